package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
)

// CSVSource reads rows from a published CSV export. The source id is the
// export URL; the range is ignored because the export is already one sheet.
type CSVSource struct {
	Client *http.Client
}

func (s CSVSource) ReadRows(ctx context.Context, sourceID, _ string) ([][]string, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceID, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("csv export status %d", resp.StatusCode)
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader.ReadAll()
}
