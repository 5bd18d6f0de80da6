package notifier

import (
	"fmt"
	"html"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"SVMonit/internal/model"
)

// ForecastCheckpoints are the horizons (days ahead) listed in a report.
var ForecastCheckpoints = []int{7, 30, 90, 180}

var indicatorLabels = map[string]string{
	model.SeriesMVRV:        "MVRV",
	model.SeriesSTHMVRV:     "STH-MVRV",
	model.SeriesLTHMVRV:     "LTH-MVRV",
	model.SeriesLTHSTHRatio: "LTH/STH",
	model.SeriesRSI:         "RSI",
}

// FormatSelectionReport renders a window summary and its forecast.
func FormatSelectionReport(iv model.Interval, s *model.WindowSummary, fc *model.ForecastResult) string {
	var b strings.Builder
	writeHeader(&b, iv, s)
	writeSummary(&b, s)
	writeIndicators(&b, s)

	b.WriteString("\n🔮 <b>Forecast</b>\n")
	for _, h := range ForecastCheckpoints {
		p, ok := fc.At(h)
		if !ok {
			continue
		}
		b.WriteString(fmt.Sprintf("  +%dd (%s): %s (%s)\n",
			h, p.Date.Format("2006-01-02"), FormatPrice(p.Value), FormatChange(s.Last, p.Value)))
	}
	b.WriteString(fmt.Sprintf("  Model: ARIMA(%d,%d,%d) on %d days, σ²=%s\n",
		fc.Order.P, fc.Order.D, fc.Order.Q, fc.Observations, decimal.NewFromFloat(fc.Sigma2).StringFixed(2)))
	return b.String()
}

// FormatDegradedReport renders a window summary when no forecast is available.
func FormatDegradedReport(iv model.Interval, s *model.WindowSummary, cause error) string {
	var b strings.Builder
	writeHeader(&b, iv, s)
	writeSummary(&b, s)
	writeIndicators(&b, s)
	b.WriteString(fmt.Sprintf("\n⚠️ Forecast unavailable: %s\n", html.EscapeString(cause.Error())))
	return b.String()
}

func writeHeader(b *strings.Builder, iv model.Interval, s *model.WindowSummary) {
	b.WriteString(fmt.Sprintf("📊 <b>SVMonit</b> | %s | %s → %s\n\n",
		iv, s.From.Format("2006-01-02"), s.To.Format("2006-01-02")))
}

func writeSummary(b *strings.Builder, s *model.WindowSummary) {
	b.WriteString(fmt.Sprintf("Price: %s (%s over %d days)\n", FormatPrice(s.Last), FormatPct(s.ChangePct), s.Points))
	b.WriteString(fmt.Sprintf("High: %s | Low: %s\n", FormatPrice(s.High), FormatPrice(s.Low)))
	b.WriteString(fmt.Sprintf("Position in range: %.0f%%\n", s.Position*100))
	b.WriteString(fmt.Sprintf("SMA%d: %s | RSI14: %.1f\n", s.SMAPeriod, FormatPrice(s.SMA), s.RSI))
}

func writeIndicators(b *strings.Builder, s *model.WindowSummary) {
	if len(s.Indicators) == 0 {
		return
	}
	names := make([]string, 0, len(s.Indicators))
	for name := range s.Indicators {
		names = append(names, name)
	}
	sort.Strings(names)

	b.WriteString("\n📈 <b>Indicators</b>\n")
	for _, name := range names {
		label, ok := indicatorLabels[name]
		if !ok {
			label = name
		}
		b.WriteString(fmt.Sprintf("  %s: %.2f\n", html.EscapeString(label), s.Indicators[name]))
	}
}

// FormatHelp lists the supported commands.
func FormatHelp(defaultInterval string) string {
	var b strings.Builder
	b.WriteString("🤖 <b>SVMonit commands</b>\n\n")
	for _, tok := range model.StandardIntervals {
		b.WriteString(fmt.Sprintf("/%s  window report with forecast\n", tok))
	}
	b.WriteString("/&lt;N&gt;d  any trailing window, e.g. /45d\n")
	b.WriteString("/status  data and model status\n")
	b.WriteString("/help  this message\n")
	b.WriteString(fmt.Sprintf("\nScheduled report window: %s\n", defaultInterval))
	return b.String()
}

// FormatUnknownCommand answers a command that is neither a window nor a
// known keyword, followed by the help text.
func FormatUnknownCommand(command, defaultInterval string) string {
	return fmt.Sprintf("❓ Unknown command %s\n\n%s",
		html.EscapeString(strconv.Quote(command)), FormatHelp(defaultInterval))
}

// FormatFailure renders an error reply. Messages are sent as HTML, so the
// error text is escaped.
func FormatFailure(title string, err error) string {
	if title == "" {
		return "❌ " + html.EscapeString(err.Error())
	}
	return fmt.Sprintf("❌ %s: %s", html.EscapeString(title), html.EscapeString(err.Error()))
}

// Status describes the loaded data for the /status command.
type Status struct {
	Source    string
	Points    int
	From      time.Time
	To        time.Time
	Series    []string
	Steps     int
	StartedAt time.Time
}

// FormatStatus renders the current data status.
func FormatStatus(st Status) string {
	var b strings.Builder
	b.WriteString("📦 <b>SVMonit status</b>\n\n")
	b.WriteString(fmt.Sprintf("Source: %s\n", html.EscapeString(st.Source)))
	b.WriteString(fmt.Sprintf("History: %d days (%s → %s)\n",
		st.Points, st.From.Format("2006-01-02"), st.To.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Series: %s\n", html.EscapeString(strings.Join(st.Series, ", "))))
	b.WriteString(fmt.Sprintf("Forecast horizon: %d days\n", st.Steps))
	b.WriteString(fmt.Sprintf("Up since: %s\n", st.StartedAt.UTC().Format("2006-01-02 15:04 MST")))
	return b.String()
}

// FormatPrice renders a USD amount with two decimals and thousands separators.
func FormatPrice(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	fixed := d.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")
	var grouped strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(c)
	}
	return fmt.Sprintf("%s$%s.%s", sign, grouped.String(), frac)
}

// FormatPct renders a signed percentage.
func FormatPct(pct float64) string {
	d := decimal.NewFromFloat(pct)
	s := d.StringFixed(2) + "%"
	if d.IsPositive() {
		s = "+" + s
	}
	return s
}

// FormatChange renders the percentage change from base to v with a sign.
func FormatChange(base, v float64) string {
	if base == 0 {
		return "n/a"
	}
	pct := decimal.NewFromFloat(v).Sub(decimal.NewFromFloat(base)).
		Div(decimal.NewFromFloat(base)).Mul(decimal.NewFromInt(100))
	return FormatPct(pct.InexactFloat64())
}
