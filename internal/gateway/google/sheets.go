package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

type appendRequest struct {
	Values [][]interface{} `json:"values"`
}

// AppendBookingRow appends one row to the booking log spreadsheet.
func (s *Service) AppendBookingRow(ctx context.Context, spreadsheetID, sheetRange string, values []interface{}) error {
	payload, err := json.Marshal(appendRequest{Values: [][]interface{}{values}})
	if err != nil {
		return fmt.Errorf("failed to marshal sheet row: %w", err)
	}

	endpoint := fmt.Sprintf("%s/spreadsheets/%s/values/%s:append?valueInputOption=USER_ENTERED",
		s.sheetsURL, url.PathEscape(spreadsheetID), url.PathEscape(sheetRange))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build append request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.do(req, "append_row")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
