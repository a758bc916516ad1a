package backtest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chartsync/internal/model"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, nil), srv
}

func TestPriceData(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/get-price-data", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("ticker") != "AAPL" || q.Get("start_date") != "2019-01-01" || q.Get("end_date") != "2023-12-31" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"date": "2019-01-03", "open": 35.5, "high": 36.4, "low": 35.2, "close": 35.6},
			{"date": "2019-01-02", "open": 35.0, "high": 35.8, "low": 34.8, "close": 35.4},
			{"date": "bogus", "open": 1.0, "high": 1.0, "low": 1.0, "close": 1.0},
		})
	})
	c, _ := newTestClient(t, mux)

	bars, err := c.PriceData(context.Background(), "AAPL", "2019-01-01", "2023-12-31")
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if bars[0].Time.String() != "2019-01-02" || bars[1].Time.String() != "2019-01-03" {
		t.Fatalf("bars not sorted: %s, %s", bars[0].Time, bars[1].Time)
	}
	if bars[1].Close != 35.6 {
		t.Fatalf("close = %v", bars[1].Close)
	}
}

func TestPriceDataServiceError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/get-price-data", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid date range"})
	})
	c, _ := newTestClient(t, mux)

	_, err := c.PriceData(context.Background(), "AAPL", "2023-12-31", "2019-01-01")
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Message != "invalid date range" {
		t.Fatalf("apiErr = %+v", apiErr)
	}
}

func TestIndicatorDataDateShapes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/get-indicator-data", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("indicator"); got != "SMA" {
			t.Errorf("indicator = %q", got)
		}
		if got := r.URL.Query().Get("period"); got != "20" {
			t.Errorf("period = %q", got)
		}
		// Mixed casing and shapes, plus a warm-up null and a bad date.
		_, _ = w.Write([]byte(`[
			{"Date": "2019-01-02T00:00:00Z", "value": 35.1},
			{"date": "2019-01-03", "value": 35.2},
			{"date": "2019-01-04", "value": null},
			{"date": "garbage", "value": 35.3}
		]`))
	})
	c, _ := newTestClient(t, mux)

	samples, err := c.IndicatorData(context.Background(), "AAPL", model.IndicatorSMA, 20, "2019-01-01", "2023-12-31")
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	if samples[0].Time.String() != "2019-01-02" || samples[0].Value != 35.1 {
		t.Fatalf("sample 0 = %+v", samples[0])
	}
}

func TestRunBacktest(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/run-backtest", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		var params model.StrategyParameters
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			t.Fatal(err)
		}
		if params.Ticker != "AAPL" {
			t.Errorf("ticker = %q", params.Ticker)
		}
		// Canonicalization must strip the transient Value on an MA condition.
		if params.Conditions[0].Value != nil {
			t.Errorf("condition value not canonicalized: %+v", params.Conditions[0])
		}
		_, _ = w.Write([]byte(`{
			"total_return": 12.4,
			"sharpe_ratio": "N/A",
			"profit_factor": 1.8,
			"max_drawdown": -9.1,
			"win_rate": 60.0,
			"trade_history": [
				{"EntryTime": "2019-06-03", "EntryPrice": 43.99, "ExitTime": "2019-06-05", "ExitPrice": 46.07, "Size": 10, "PnL": 20.8, "ReturnPct": 4.7}
			]
		}`))
	})
	c, _ := newTestClient(t, mux)

	params := model.DefaultParameters()
	v := 12.0
	params.Conditions[0].Value = &v // transient edit state

	result, err := c.RunBacktest(context.Background(), params)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.TradeHistory) != 1 {
		t.Fatalf("trades = %d", len(result.TradeHistory))
	}
	if result.SharpeRatio.Display() != "N/A" {
		t.Fatalf("sharpe display = %s", result.SharpeRatio.Display())
	}
	if result.TotalReturn.Display() != "12.40" {
		t.Fatalf("total return display = %s", result.TotalReturn.Display())
	}
}

func TestRunBacktestServiceError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/run-backtest", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Error during backtesting: boom"})
	})
	c, _ := newTestClient(t, mux)

	_, err := c.RunBacktest(context.Background(), model.DefaultParameters())
	if err == nil {
		t.Fatal("expected error")
	}
	apiErr, ok := err.(*APIError)
	if !ok || apiErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("err = %v", err)
	}
}
