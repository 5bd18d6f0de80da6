package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SVMonit/internal/model"
)

func newTestNotifier(t *testing.T, url string) *TelegramNotifier {
	t.Helper()
	logger, _ := test.NewNullLogger()
	n := NewTelegramNotifier("TOKEN", "42", "", logger)
	n.BaseURL = url
	n.RetryBackoff = time.Millisecond
	n.PollBackoff = time.Millisecond
	return n
}

func TestSend(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	n := newTestNotifier(t, srv.URL)
	require.NoError(t, n.Send(context.Background(), "hello"))
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "hello", got["text"])
	assert.Equal(t, "HTML", got["parse_mode"])
}

func TestSend_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad chat", http.StatusBadRequest)
	}))
	defer srv.Close()

	err := newTestNotifier(t, srv.URL).Send(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestSendWithRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	n := newTestNotifier(t, srv.URL)
	require.NoError(t, n.SendWithRetry(context.Background(), "x", 3))
	assert.Equal(t, int32(3), calls.Load())
}

func TestSendWithRetry_Exhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := newTestNotifier(t, srv.URL).SendWithRetry(context.Background(), "x", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 3 retries exhausted")
	assert.Equal(t, int32(3), calls.Load())
}

func TestStartPolling_DispatchesCommands(t *testing.T) {
	var (
		mu      sync.Mutex
		replies []string
		offsets []string
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/botTOKEN/getUpdates":
			mu.Lock()
			offsets = append(offsets, r.URL.Query().Get("offset"))
			first := len(offsets) == 1
			mu.Unlock()
			if first {
				fmt.Fprint(w, `{"ok":true,"result":[
					{"update_id":10,"message":{"text":" /7d "}},
					{"update_id":11},
					{"update_id":12,"message":{"text":"/noop"}}
				]}`)
				return
			}
			fmt.Fprint(w, `{"ok":true,"result":[]}`)
		case "/botTOKEN/sendMessage":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			mu.Lock()
			replies = append(replies, body["text"])
			mu.Unlock()
			cancel()
			fmt.Fprint(w, `{"ok":true}`)
		}
	}))
	defer srv.Close()

	n := newTestNotifier(t, srv.URL)
	var commands []string
	done := make(chan struct{})
	go func() {
		n.StartPolling(ctx, func(_ context.Context, cmd string) string {
			commands = append(commands, cmd)
			if cmd == "/noop" {
				return ""
			}
			return "report " + cmd
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/7d", "/noop"}, commands)
	assert.Equal(t, []string{"report /7d"}, replies)
	assert.Equal(t, "0", offsets[0])
}

func TestStartPolling_StopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	done := make(chan struct{})
	go func() {
		newTestNotifier(t, srv.URL).StartPolling(ctx, func(context.Context, string) string { return "" })
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop")
	}
}

func sampleSummary() *model.WindowSummary {
	return &model.WindowSummary{
		From:      time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		To:        time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC),
		Points:    8,
		First:     80000,
		Last:      84000,
		High:      85000.5,
		Low:       79000,
		ChangePct: 5,
		SMA:       82000,
		SMAPeriod: 8,
		RSI:       61.27,
		Position:  0.8333,
		Indicators: map[string]float64{
			model.SeriesMVRV: 2.1234,
			model.SeriesRSI:  55,
			"custom":         1,
		},
	}
}

func TestFormatSelectionReport(t *testing.T) {
	last := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)
	pts := make([]model.ForecastPoint, 180)
	for i := range pts {
		pts[i] = model.ForecastPoint{Date: last.AddDate(0, 0, i+1), Value: 84000 + float64(i+1)*10}
	}
	fc := &model.ForecastResult{
		Points:       pts,
		Order:        model.Order{P: 3, D: 1, Q: 2},
		Sigma2:       1234.5,
		Observations: 91,
	}

	msg := FormatSelectionReport(model.Interval{Token: "7d", Days: 7}, sampleSummary(), fc)
	assert.Contains(t, msg, "7d | 2025-03-01 → 2025-03-08")
	assert.Contains(t, msg, "Price: $84,000.00 (+5.00% over 8 days)")
	assert.Contains(t, msg, "High: $85,000.50 | Low: $79,000.00")
	assert.Contains(t, msg, "SMA8: $82,000.00 | RSI14: 61.3")
	assert.Contains(t, msg, "MVRV: 2.12")
	assert.Contains(t, msg, "custom: 1.00")
	assert.Contains(t, msg, "+7d (2025-03-15): $84,070.00 (+0.08%)")
	assert.Contains(t, msg, "+180d (2025-09-04): $85,800.00 (+2.14%)")
	assert.Contains(t, msg, "ARIMA(3,1,2) on 91 days")
}

func TestFormatSelectionReport_ShortHorizon(t *testing.T) {
	last := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)
	fc := &model.ForecastResult{Points: []model.ForecastPoint{
		{Date: last.AddDate(0, 0, 1), Value: 1},
	}}
	msg := FormatSelectionReport(model.Interval{All: true, Token: "all"}, sampleSummary(), fc)
	assert.NotContains(t, msg, "+7d")
	assert.Contains(t, msg, "| all |")
}

func TestFormatDegradedReport(t *testing.T) {
	msg := FormatDegradedReport(model.Interval{Token: "30d", Days: 30}, sampleSummary(), errors.New("fit failed"))
	assert.Contains(t, msg, "Forecast unavailable: fit failed")
	assert.NotContains(t, msg, "ARIMA")
}

func TestFormatPrice(t *testing.T) {
	tests := map[float64]string{
		0:           "$0.00",
		999.999:     "$1,000.00",
		1234567.891: "$1,234,567.89",
		-42.5:       "-$42.50",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatPrice(in), "input %v", in)
	}
}

func TestFormatPctAndChange(t *testing.T) {
	assert.Equal(t, "+5.00%", FormatPct(5))
	assert.Equal(t, "-1.25%", FormatPct(-1.25))
	assert.Equal(t, "0.00%", FormatPct(0))
	assert.Equal(t, "+10.00%", FormatChange(100, 110))
	assert.Equal(t, "n/a", FormatChange(0, 1))
}

func TestFormatHelpAndStatus(t *testing.T) {
	help := FormatHelp("7d")
	for _, tok := range model.StandardIntervals {
		assert.Contains(t, help, "/"+tok)
	}
	assert.Contains(t, help, "Scheduled report window: 7d")

	st := FormatStatus(Status{
		Source:    "coingecko",
		Points:    91,
		From:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		To:        time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		Series:    []string{"price", "mvrv"},
		Steps:     180,
		StartedAt: time.Date(2025, 4, 1, 9, 30, 0, 0, time.UTC),
	})
	assert.Contains(t, st, "Source: coingecko")
	assert.Contains(t, st, "History: 91 days (2025-01-01 → 2025-04-01)")
	assert.Contains(t, st, "Series: price, mvrv")
	assert.Contains(t, st, "Forecast horizon: 180 days")
}

// telegramTag matches the tags accepted by Telegram's HTML parse mode.
var telegramTag = regexp.MustCompile(`^</?(b|strong|i|em|u|ins|s|strike|del|code|pre|a|span|tg-spoiler|blockquote)(\s[^<>]*)?>`)

// assertTelegramHTML fails if msg contains a '<' that does not open a
// supported tag.
func assertTelegramHTML(t *testing.T, msg string) {
	t.Helper()
	for i := 0; i < len(msg); i++ {
		if msg[i] != '<' {
			continue
		}
		loc := telegramTag.FindStringIndex(msg[i:])
		if !assert.NotNil(t, loc, "unsupported markup at %q", msg[i:min(len(msg), i+20)]) {
			return
		}
		i += loc[1] - 1
	}
}

func TestFormatters_EmitTelegramHTML(t *testing.T) {
	last := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)
	fc := &model.ForecastResult{Points: []model.ForecastPoint{{Date: last.AddDate(0, 0, 1), Value: 1}}}
	summary := sampleSummary()
	summary.Indicators["<custom>"] = 1

	msgs := map[string]string{
		"help":     FormatHelp("7d"),
		"report":   FormatSelectionReport(model.Interval{Token: "7d", Days: 7}, summary, fc),
		"degraded": FormatDegradedReport(model.Interval{Token: "7d", Days: 7}, summary, errors.New("<nil> & worse")),
		"unknown":  FormatUnknownCommand("/<script>", "7d"),
		"failure":  FormatFailure("Report <failed>", errors.New("a < b")),
		"status":   FormatStatus(Status{Source: "<src>", Series: []string{"<x>"}}),
	}
	for name, msg := range msgs {
		t.Run(name, func(t *testing.T) {
			assertTelegramHTML(t, msg)
		})
	}
	assert.Contains(t, msgs["help"], "/&lt;N&gt;d")
	assert.Contains(t, msgs["unknown"], "&lt;script&gt;")
	assert.Contains(t, msgs["failure"], "❌ Report &lt;failed&gt;: a &lt; b")
	assert.Contains(t, msgs["degraded"], "&lt;nil&gt; &amp; worse")
}

func TestFormatFailure_NoTitle(t *testing.T) {
	assert.Equal(t, "❌ boom", FormatFailure("", errors.New("boom")))
}
