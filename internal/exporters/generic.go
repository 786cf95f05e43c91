package exporters

import "context"

// DeckSource produces the full deck export document.
type DeckSource interface {
	ExportAllData(ctx context.Context) (string, error)
}

type BackupResult struct {
	Path   string `json:"path"`
	Bytes  int    `json:"bytes"`
	Pruned int    `json:"pruned"`
}
