package markets

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/betbet/exchange/internal/sanitizer"
	"github.com/betbet/exchange/internal/validator"
	"github.com/betbet/exchange/models"
)

// CreateMarketRequest represents the request to create a market
type CreateMarketRequest struct {
	Title             string                 `json:"title" binding:"required"`
	Description       string                 `json:"description,omitempty"`
	Category          string                 `json:"category,omitempty"`
	MarketType        string                 `json:"market_type" binding:"required"`
	ResolutionSource  string                 `json:"resolution_source,omitempty"`
	OracleType        string                 `json:"oracle_type,omitempty"`
	ClosesAt          time.Time              `json:"closes_at" binding:"required"`
	CreatorFeePercent *decimal.Decimal       `json:"creator_fee_percent,omitempty"`
	Outcomes          []CreateOutcomeRequest `json:"outcomes" binding:"required"`
}

// CreateOutcomeRequest represents a market outcome in creation request
type CreateOutcomeRequest struct {
	OutcomeText  string `json:"outcome_text" binding:"required"`
	OutcomeValue string `json:"outcome_value,omitempty"`
}

// Validate sanitizes free-text fields and checks the request against
// the module configuration.
func (r *CreateMarketRequest) Validate(v *validator.Validator, stripper sanitizer.HTMLStripperer, config *Config) bool {
	r.Title = stripper.StripHTML(r.Title)
	r.Description = stripper.StripHTML(r.Description)
	r.Category = stripper.StripHTML(r.Category)

	v.Check(validator.NotBlank(r.Title), "title", "title is required")
	v.Check(validator.MinRunes(r.Title, config.MinTitleLength), "title", "title is too short")
	v.Check(validator.MaxRunes(r.Title, config.MaxTitleLength), "title", "title is too long")

	v.Check(validator.In(r.MarketType,
		string(models.MarketTypeBinary),
		string(models.MarketTypeMultiple),
		string(models.MarketTypeScalar)),
		"market_type", "market_type must be one of: binary, multiple, scalar")

	if r.OracleType != "" {
		v.Check(validator.In(r.OracleType,
			string(models.OracleTypeManual),
			string(models.OracleTypeAutomated)),
			"oracle_type", "oracle_type must be one of: manual, automated")
	}

	now := time.Now()
	v.Check(r.ClosesAt.After(now.Add(config.MinMarketDuration)), "closes_at", "market must stay open long enough")
	v.Check(r.ClosesAt.Before(now.Add(config.MaxMarketDuration)), "closes_at", "closing time is too far in the future")

	if r.CreatorFeePercent != nil {
		v.Check(r.CreatorFeePercent.GreaterThanOrEqual(decimal.Zero) &&
			r.CreatorFeePercent.LessThanOrEqual(decimal.NewFromInt(100)),
			"creator_fee_percent", "creator_fee_percent must be between 0 and 100")
	}

	v.Check(len(r.Outcomes) >= config.MinOutcomes, "outcomes", "not enough outcomes")
	v.Check(len(r.Outcomes) <= config.MaxOutcomes, "outcomes", "too many outcomes")

	texts := make([]string, 0, len(r.Outcomes))
	for i := range r.Outcomes {
		r.Outcomes[i].OutcomeText = stripper.StripHTML(r.Outcomes[i].OutcomeText)
		r.Outcomes[i].OutcomeValue = stripper.StripHTML(r.Outcomes[i].OutcomeValue)
		v.Check(validator.NotBlank(r.Outcomes[i].OutcomeText), "outcomes", "outcome_text is required")
		texts = append(texts, r.Outcomes[i].OutcomeText)
	}
	v.Check(validator.NoDuplicates(texts), "outcomes", "outcome_text must be unique within a market")

	return v.Valid()
}

// ResolveMarketRequest represents the request to resolve a market
type ResolveMarketRequest struct {
	WinningOutcomeID *uuid.UUID `json:"winning_outcome_id,omitempty"`
	ResolutionValue  string     `json:"resolution_value" binding:"required"`
}

// MarketDetailResponse represents detailed market information
type MarketDetailResponse struct {
	ID                uuid.UUID         `json:"id"`
	Title             string            `json:"title"`
	Description       string            `json:"description,omitempty"`
	Category          string            `json:"category,omitempty"`
	MarketType        string            `json:"market_type"`
	CreatorID         string            `json:"creator_id"`
	CreatorFeePercent decimal.Decimal   `json:"creator_fee_percent"`
	Status            string            `json:"status"`
	ResolutionSource  string            `json:"resolution_source,omitempty"`
	OracleType        string            `json:"oracle_type"`
	OpensAt           time.Time         `json:"opens_at"`
	ClosesAt          time.Time         `json:"closes_at"`
	ResolvedAt        *time.Time        `json:"resolved_at,omitempty"`
	ResolutionValue   string            `json:"resolution_value,omitempty"`
	TotalVolume       decimal.Decimal   `json:"total_volume"`
	ParticipantCount  int               `json:"participant_count"`
	Outcomes          []OutcomeResponse `json:"outcomes"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// OutcomeResponse represents a market outcome with its live odds
type OutcomeResponse struct {
	ID           uuid.UUID       `json:"id"`
	OutcomeText  string          `json:"outcome_text"`
	OutcomeValue string          `json:"outcome_value,omitempty"`
	CurrentOdds  decimal.Decimal `json:"current_odds"`
	TotalBacked  decimal.Decimal `json:"total_backed"`
	IsWinner     *bool           `json:"is_winner,omitempty"`
}

// OutcomeOdds is a single odds quote in MarketOddsResponse
type OutcomeOdds struct {
	OutcomeID   uuid.UUID       `json:"outcome_id"`
	OutcomeText string          `json:"outcome_text"`
	CurrentOdds decimal.Decimal `json:"current_odds"`
	TotalBacked decimal.Decimal `json:"total_backed"`
}

// MarketOddsResponse represents the current odds across a market
type MarketOddsResponse struct {
	MarketID uuid.UUID     `json:"market_id"`
	Status   string        `json:"status"`
	Odds     []OutcomeOdds `json:"odds"`
}

// ToMarketDetailResponse converts a models.Market to MarketDetailResponse
func ToMarketDetailResponse(market *models.Market) *MarketDetailResponse {
	response := &MarketDetailResponse{
		ID:                market.ID,
		Title:             market.Title,
		Description:       market.Description,
		Category:          market.Category,
		MarketType:        string(market.MarketType),
		CreatorID:         market.CreatorID,
		CreatorFeePercent: market.CreatorFeePercent,
		Status:            string(market.Status),
		ResolutionSource:  market.ResolutionSource,
		OracleType:        string(market.OracleType),
		OpensAt:           market.OpensAt,
		ClosesAt:          market.ClosesAt,
		ResolvedAt:        market.ResolvedAt,
		ResolutionValue:   market.ResolutionValue,
		TotalVolume:       market.TotalVolume,
		ParticipantCount:  market.ParticipantCount,
		CreatedAt:         market.CreatedAt,
		UpdatedAt:         market.UpdatedAt,
	}

	response.Outcomes = make([]OutcomeResponse, len(market.Outcomes))
	for i := range market.Outcomes {
		response.Outcomes[i] = *ToOutcomeResponse(&market.Outcomes[i])
	}

	return response
}

// ToOutcomeResponse converts a models.MarketOutcome to OutcomeResponse
func ToOutcomeResponse(outcome *models.MarketOutcome) *OutcomeResponse {
	return &OutcomeResponse{
		ID:           outcome.ID,
		OutcomeText:  outcome.OutcomeText,
		OutcomeValue: outcome.OutcomeValue,
		CurrentOdds:  outcome.CurrentOdds,
		TotalBacked:  outcome.TotalBacked,
		IsWinner:     outcome.IsWinner,
	}
}

// ToMarketOddsResponse extracts the odds view of a market
func ToMarketOddsResponse(market *models.Market) *MarketOddsResponse {
	response := &MarketOddsResponse{
		MarketID: market.ID,
		Status:   string(market.Status),
		Odds:     make([]OutcomeOdds, len(market.Outcomes)),
	}
	for i := range market.Outcomes {
		outcome := &market.Outcomes[i]
		response.Odds[i] = OutcomeOdds{
			OutcomeID:   outcome.ID,
			OutcomeText: outcome.OutcomeText,
			CurrentOdds: outcome.CurrentOdds,
			TotalBacked: outcome.TotalBacked,
		}
	}
	return response
}
