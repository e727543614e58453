package ledger

import "context"

type LedgerService interface {
	Record(ctx context.Context, req RecordEntryRequest) (EntryResponse, error)
	List(ctx context.Context, req ListEntriesRequest) (EntryListResponse, error)
}
