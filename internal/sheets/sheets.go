package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// Source reads cell ranges from Google Sheets as strings.
type Source struct {
	svc *gsheets.Service
}

func New(ctx context.Context, opts ...option.ClientOption) (*Source, error) {
	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}
	return &Source{svc: svc}, nil
}

func (s *Source) ReadRows(ctx context.Context, sheetID, rangeSpec string) ([][]string, error) {
	res, err := s.svc.Spreadsheets.Values.Get(sheetID, rangeSpec).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rangeSpec, err)
	}
	out := make([][]string, 0, len(res.Values))
	for _, row := range res.Values {
		cells := make([]string, len(row))
		for i, v := range row {
			if v == nil {
				continue
			}
			cells[i] = fmt.Sprint(v)
		}
		out = append(out, cells)
	}
	return out, nil
}
