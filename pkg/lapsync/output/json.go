// Package output renders synchronization results as JSON.
package output

import (
	"encoding/json"

	"github.com/ukaji3/lapsync-go/pkg/lapsync/models"
)

// ToJSON serializes a sync result.
func ToJSON(result *models.SyncResult, pretty bool) ([]byte, error) {
	return marshal(result, pretty)
}

// TotalsToJSON serializes column totals.
func TotalsToJSON(totals *models.Totals, pretty bool) ([]byte, error) {
	return marshal(totals, pretty)
}

// RegionsToJSON serializes a list of named regions.
func RegionsToJSON(regions []models.Region, pretty bool) ([]byte, error) {
	if regions == nil {
		regions = []models.Region{}
	}
	return marshal(regions, pretty)
}

func marshal(v interface{}, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// ErrorToJSON serializes an error as {"error": "..."}.
func ErrorToJSON(err error) ([]byte, error) {
	return json.Marshal(struct {
		Error string `json:"error"`
	}{Error: err.Error()})
}
