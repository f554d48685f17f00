package s1_universe

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wonny/aegis-b3/internal/contracts"
	"github.com/wonny/aegis-b3/pkg/logger"
)

// TickerColumn is the required CSV header
const TickerColumn = "Ticker"

// Exclusion reasons
const (
	ReasonBlank     = "blank"
	ReasonDuplicate = "duplicate"
)

// Universe is the ordered ticker list of one run
type Universe struct {
	Tickers  []string          `json:"tickers"`
	Excluded map[string]string `json:"excluded"` // raw value → reason
}

// Count returns the number of tickers
func (u *Universe) Count() int {
	return len(u.Tickers)
}

// Builder constructs the ticker universe
type Builder struct {
	logger *logger.Logger
}

// NewBuilder creates a new Universe Builder
func NewBuilder(log *logger.Logger) *Builder {
	return &Builder{logger: log}
}

// LoadFile reads the universe CSV at path
// ⭐ SSOT: S1 티커 목록 로드
func (b *Builder) LoadFile(path string) (*Universe, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tickers file: %w", err)
	}
	defer f.Close()

	u, err := b.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return u, nil
}

// Parse reads a CSV with a Ticker header column
func (b *Builder) Parse(r io.Reader) (*Universe, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("missing %q header", TickerColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := -1
	for i, name := range header {
		if strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) == TickerColumn {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("missing %q header", TickerColumn)
	}

	var raw []string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if col >= len(row) {
			raw = append(raw, "")
			continue
		}
		raw = append(raw, row[col])
	}

	return b.FromList(raw)
}

// FromList builds a universe from raw tickers (CLI flag, request body)
func (b *Builder) FromList(raw []string) (*Universe, error) {
	u := &Universe{
		Tickers:  make([]string, 0, len(raw)),
		Excluded: make(map[string]string),
	}

	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		// 공백만 제거, 대소문자는 그대로 유지
		ticker := strings.TrimSpace(r)
		if ticker == "" {
			u.Excluded[r] = ReasonBlank
			continue
		}
		if _, dup := seen[ticker]; dup {
			u.Excluded[ticker] = ReasonDuplicate
			continue
		}
		seen[ticker] = struct{}{}
		u.Tickers = append(u.Tickers, ticker)
	}

	if len(u.Tickers) == 0 {
		return nil, contracts.ErrEmptyUniverse
	}

	b.logger.WithFields(map[string]interface{}{
		"stage":    contracts.StageUniverse.ShortName(),
		"tickers":  len(u.Tickers),
		"excluded": len(u.Excluded),
	}).Debug("Universe built")

	return u, nil
}
