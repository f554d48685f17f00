package s1_universe

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-b3/internal/contracts"
	"github.com/wonny/aegis-b3/pkg/logger"
)

func TestBuilder_Parse(t *testing.T) {
	input := "Ticker,Name\nPETR4.SA,Petrobras\n VALE3.SA ,Vale\n,blank\nPETR4.SA,dup\nitub4.sa,lower\n"

	u, err := NewBuilder(logger.Nop()).Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"PETR4.SA", "VALE3.SA", "itub4.sa"}, u.Tickers)
	assert.Equal(t, 3, u.Count())
	assert.Equal(t, ReasonDuplicate, u.Excluded["PETR4.SA"])
	assert.Equal(t, ReasonBlank, u.Excluded[""])
}

func TestBuilder_Parse_TickerNotFirstColumn(t *testing.T) {
	input := "Name,Ticker\nPetrobras,PETR4.SA\nShort\n"

	u, err := NewBuilder(logger.Nop()).Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"PETR4.SA"}, u.Tickers)
}

func TestBuilder_Parse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty file", ""},
		{"no ticker header", "Symbol\nPETR4.SA\n"},
		{"header only", "Ticker\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBuilder(logger.Nop()).Parse(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestBuilder_FromList_Empty(t *testing.T) {
	_, err := NewBuilder(logger.Nop()).FromList([]string{" ", ""})
	assert.ErrorIs(t, err, contracts.ErrEmptyUniverse)
}

func TestBuilder_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickers.csv")
	require.NoError(t, os.WriteFile(path, []byte("\ufeffTicker\nWEGE3.SA\n"), 0o600))

	u, err := NewBuilder(logger.Nop()).LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"WEGE3.SA"}, u.Tickers)

	_, err = NewBuilder(logger.Nop()).LoadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestBuilder_LoadFile_RepoUniverse(t *testing.T) {
	path := "../../config/tickers_b3.csv"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("tickers file not found")
	}

	u, err := NewBuilder(logger.Nop()).LoadFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, u.Tickers)
}
