// Package analysis talks to the external product-analysis service that
// turns packaging photos or OCR text into structured product data.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusSuccess    Status = "SUCCESS"
	StatusFailed     Status = "FAILED"
)

// Terminal reports whether the service will never change this status again.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

var ErrUnexpectedStatus = errors.New("unexpected_status")

type Image struct {
	Name string
	Data []byte
}

type Client interface {
	SubmitImages(ctx context.Context, images []Image) (string, error)
	SubmitText(ctx context.Context, text string) (string, error)
	PollStatus(ctx context.Context, taskID string) (*PollResult, error)
}

type PollResult struct {
	Status Status     `json:"status"`
	Result *Inference `json:"result"`
}

// Inference is the service's result payload. Field names follow the
// service's wire contract.
type Inference struct {
	Name           *string   `json:"name"`
	Description    *string   `json:"description"`
	Category       *string   `json:"category"`
	Manufacturer   *string   `json:"manufacturer"`
	ProductionDate *string   `json:"production_date"`
	ExpiryDate     *string   `json:"expiry_date"`
	Distributor    *string   `json:"distributor"`
	Barcode        *string   `json:"barcode"`
	Metadata       *Metadata `json:"metadata"`
}

type Metadata struct {
	NetWeight         *string      `json:"net_weight"`
	Volume            *string      `json:"volume"`
	QuantityInPackage *string      `json:"quantity_in_package"`
	Size              *string      `json:"size"`
	PartNumber        *string      `json:"part_number"`
	AgeRating         *string      `json:"age_rating"`
	CountryOfOrigin   *string      `json:"country_of_origin"`
	Ingredients       StringOrList `json:"ingredients"`
	Materials         StringOrList `json:"materials"`
	Warnings          StringOrList `json:"warnings"`
	UsageDirections   StringOrList `json:"usage_directions"`
	AdditionalInfo    StringOrList `json:"additional_info"`
}

// StringOrList tolerates the service emitting either a bare string or a
// list of strings for the same field.
type StringOrList []string

func (s *StringOrList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	if single == "" {
		*s = nil
		return nil
	}
	*s = []string{single}
	return nil
}
