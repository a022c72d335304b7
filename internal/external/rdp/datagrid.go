package rdp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wonny/esgreport/internal/contracts"
)

const datagridPath = "/data/datagrid/beta1/"

// ESG fields requested for every instrument
const (
	FieldESGScore        = "TR.TRESGScore"
	FieldEconomicSector  = "TR.TRBCEconomicSector"
	FieldExchangeCountry = "TR.ExchangeCountry"
	FieldExchangeRegion  = "TR.ExchangeRegion"
)

// ESGFields is the field list sent with the datagrid request
var ESGFields = []string{FieldESGScore, FieldEconomicSector, FieldExchangeCountry, FieldExchangeRegion}

// DatagridRequest is the POST body of the datagrid endpoint
type DatagridRequest struct {
	Fields   []string `json:"fields"`
	Universe []string `json:"universe"`
}

// DatagridResponse is the datagrid response (success or failure)
type DatagridResponse struct {
	Headers []DatagridHeader `json:"headers"`
	Data    [][]interface{}  `json:"data"`
	Error   *DatagridError   `json:"error,omitempty"`
}

// DatagridHeader describes one response column
type DatagridHeader struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

// DatagridError is the error object returned by the platform
type DatagridError struct {
	Code    json.RawMessage `json:"code"`
	Message string          `json:"message"`
}

// FetchError means the service reported a failure for the ESG request.
// Message is the service's own error text.
type FetchError struct {
	Status  int
	Message string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("ESG data request failed (status %d): %s", e.Status, e.Message)
}

// FetchESG requests ESG score, economic sector, exchange country and region
// for all instruments in a single batch call.
// Instruments the service does not know are simply absent from the result.
func (c *Client) FetchESG(ctx context.Context, instruments []string) ([]contracts.ESGRecord, error) {
	token, err := c.getToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"instruments": len(instruments),
		"fields":      len(ESGFields),
	}).Info("Requesting ESG data")

	resp, err := c.httpClient.PostJSON(ctx,
		strings.TrimRight(c.cfg.BaseURL, "/")+datagridPath,
		DatagridRequest{Fields: ESGFields, Universe: instruments},
		map[string]string{"Authorization": "Bearer " + token},
	)
	if err != nil {
		return nil, fmt.Errorf("datagrid request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read datagrid response: %w", err)
	}

	var dg DatagridResponse
	decodeErr := json.Unmarshal(body, &dg)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || dg.Error != nil {
		msg := strings.TrimSpace(string(body))
		if dg.Error != nil && dg.Error.Message != "" {
			msg = dg.Error.Message
		}
		return nil, &FetchError{Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode datagrid response: %w", decodeErr)
	}

	records, err := parseDatagrid(&dg)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"requested": len(instruments),
		"returned":  len(records),
	}).Info("ESG data received")

	return records, nil
}

// column roles in a datagrid response
const (
	roleInstrument = iota
	roleScore
	roleSector
	roleCountry
	roleRegion
	roleUnknown
)

// headerRole maps a response header to the ESGRecord field it fills.
// Field codes and display names are both accepted.
func headerRole(h DatagridHeader) int {
	for _, name := range []string{h.Name, h.Title} {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "instrument":
			return roleInstrument
		case strings.ToLower(FieldESGScore), "esg score":
			return roleScore
		case strings.ToLower(FieldEconomicSector), "trbc economic sector", "trbc economic sector name":
			return roleSector
		case strings.ToLower(FieldExchangeCountry), "exchange country", "country of exchange":
			return roleCountry
		case strings.ToLower(FieldExchangeRegion), "exchange region", "region of exchange":
			return roleRegion
		}
	}
	return roleUnknown
}

// parseDatagrid converts headers + row data into ESG records
func parseDatagrid(dg *DatagridResponse) ([]contracts.ESGRecord, error) {
	roles := make([]int, len(dg.Headers))
	hasInstrument := false
	for i, h := range dg.Headers {
		roles[i] = headerRole(h)
		if roles[i] == roleInstrument {
			hasInstrument = true
		}
	}
	if !hasInstrument && len(dg.Data) > 0 {
		return nil, fmt.Errorf("datagrid response has no instrument column")
	}

	records := make([]contracts.ESGRecord, 0, len(dg.Data))
	for r, row := range dg.Data {
		var rec contracts.ESGRecord
		for i, v := range row {
			if i >= len(roles) {
				break
			}
			switch roles[i] {
			case roleInstrument:
				rec.Instrument = textValue(v)
			case roleScore:
				score, err := scoreValue(v)
				if err != nil {
					return nil, fmt.Errorf("row %d: %w", r, err)
				}
				rec.Score = score
			case roleSector:
				rec.Sector = textValue(v)
			case roleCountry:
				rec.Country = textValue(v)
			case roleRegion:
				rec.Region = textValue(v)
			}
		}
		if rec.Instrument == "" {
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

func textValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// scoreValue returns nil for null or empty scores
func scoreValue(v interface{}) (*float64, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case float64:
		return &t, nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ESG score %q", t)
		}
		return &f, nil
	default:
		return nil, fmt.Errorf("unexpected ESG score type %T", v)
	}
}
