package news

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-b3/pkg/config"
	"github.com/wonny/aegis-b3/pkg/logger"
)

const searchPage = `<html><body>
<h2>  Petrobras anuncia
   dividendos recordes </h2>
<h2></h2>
<div><h2>PETR4 sobe após resultado</h2></div>
<h2>Ibovespa fecha em alta</h2>
<h2>Quarto título</h2>
</body></html>`

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
<title>PETR4.SA - Google Notícias</title>
<item><title>Petrobras eleva produção</title><link>https://example.com/1</link></item>
<item><title>PETR4 sobe após resultado</title><link>https://example.com/2</link></item>
<item><title>Analistas revisam preço-alvo</title><link>https://example.com/3</link></item>
</channel></rss>`

func testConfig(infoMoneyURL, rssURL string, maxHeadlines int) *config.Config {
	return &config.Config{
		Env:      "test",
		Pipeline: config.PipelineConfig{CallTimeout: 2 * time.Second},
		News: config.NewsConfig{
			InfoMoneyURL: infoMoneyURL,
			RSSURL:       rssURL,
			MaxHeadlines: maxHeadlines,
		},
	}
}

func TestInfoMoney_Headlines(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PETR4.SA", r.URL.Query().Get("s"))
		_, _ = w.Write([]byte(searchPage))
	}))
	defer server.Close()

	src := NewInfoMoney(testConfig(server.URL+"/", "", 3), nil, logger.Nop())
	got, err := src.Headlines(context.Background(), "PETR4.SA")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Petrobras anuncia dividendos recordes",
		"PETR4 sobe após resultado",
		"Ibovespa fecha em alta",
	}, got)
}

func TestInfoMoney_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	src := NewInfoMoney(testConfig(server.URL, "", 5), nil, logger.Nop())
	_, err := src.Headlines(context.Background(), "VALE3.SA")
	assert.ErrorContains(t, err, "status 403")
}

func TestRSS_Headlines(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PETR4.SA", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(feedXML))
	}))
	defer server.Close()

	src := NewRSS(testConfig("", server.URL+"/rss?q=%s", 2), nil, logger.Nop())
	got, err := src.Headlines(context.Background(), "PETR4.SA")
	require.NoError(t, err)
	assert.Equal(t, []string{"Petrobras eleva produção", "PETR4 sobe após resultado"}, got)
}

func TestRSS_BadFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not a feed"))
	}))
	defer server.Close()

	src := NewRSS(testConfig("", server.URL, 5), nil, logger.Nop())
	_, err := src.Headlines(context.Background(), "PETR4.SA")
	assert.Error(t, err)
}

type fakeSource struct {
	name      string
	headlines []string
	err       error
}

func (f fakeSource) Name() string { return f.name }

func (f fakeSource) Headlines(context.Context, string) ([]string, error) {
	return f.headlines, f.err
}

func TestCombined(t *testing.T) {
	a := fakeSource{name: "a", headlines: []string{"h1", "h2"}}
	b := fakeSource{name: "b", headlines: []string{"h2", "h3", "h4"}}
	broken := fakeSource{name: "broken", err: errors.New("down")}

	tests := []struct {
		name    string
		max     int
		sources []Source
		want    []string
		wantErr bool
	}{
		{"merge distinct in order", 5, []Source{a, b}, []string{"h1", "h2", "h3", "h4"}, false},
		{"capped", 3, []Source{a, b}, []string{"h1", "h2", "h3"}, false},
		{"failing source skipped", 5, []Source{broken, b}, []string{"h2", "h3", "h4"}, false},
		{"all failing", 5, []Source{broken, broken}, nil, true},
		{"no sources", 5, nil, []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewCombined(tt.max, logger.Nop(), tt.sources...).Headlines(context.Background(), "X")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
