package notifier

import (
	"fmt"
	"strings"

	"TickerSentinel/internal/model"
)

// amountSteps maps bucket amounts onto a red-to-green scale for the
// daily table cells.
var amountSteps = []int{0, 100, 200, 400, 500, 600, 700, 800}

func amountColor(amount int) string {
	norm := 0.0
	for i, s := range amountSteps {
		if s == amount {
			norm = float64(i) / float64(len(amountSteps)-1)
			break
		}
	}
	r := int((1.0 - norm) * 255)
	g := int(norm * 255)
	return fmt.Sprintf("rgb(%d,%d,0)", r, g)
}

// FormatDailyHTML renders the full threshold table of the daily run.
// Columns follow priority order: deep-window bounds first.
func FormatDailyHTML(rows []model.BucketRow) string {
	var b strings.Builder
	b.WriteString(`<table border="1" cellspacing="0" cellpadding="6" style="border-collapse:collapse;font-family:Arial;font-size:12px;">
  <thead style="background:#f0f0f0">
    <tr>
      <th>Ticker</th><th>Latest</th><th>Min 90d</th><th>80%Gap 90d</th><th>HalfGap 90d</th>
      <th>Min 30d</th><th>80%Gap 30d</th><th>Avg 90d</th><th>HalfGap 30d</th><th>Avg 30d</th>
      <th>Decision</th><th>Amount</th>
    </tr>
  </thead>
  <tbody>
`)
	for _, r := range rows {
		color := amountColor(r.Amount)
		b.WriteString("    <tr>\n")
		b.WriteString(fmt.Sprintf("      <td>%s</td><td>%.2f</td>", r.Ticker, r.Latest))
		b.WriteString(fmt.Sprintf("<td>%.2f</td><td>%.2f</td><td>%.2f</td>", r.MinLong, r.EightyLong, r.HalfLong))
		b.WriteString(fmt.Sprintf("<td>%.2f</td><td>%.2f</td><td>%.2f</td>", r.MinShort, r.EightyShort, r.AvgLong))
		b.WriteString(fmt.Sprintf("<td>%.2f</td><td>%.2f</td>\n", r.HalfShort, r.AvgShort))
		b.WriteString(fmt.Sprintf("      <td style=\"background:%s;text-align:center;\"><b>%s</b></td>\n", color, r.Label))
		b.WriteString(fmt.Sprintf("      <td style=\"background:%s;text-align:center;\"><b>$%d</b></td>\n", color, r.Amount))
		b.WriteString("    </tr>\n")
	}
	b.WriteString("  </tbody>\n</table>")
	return b.String()
}

// FormatDailyText is the plain-text fallback of the daily table.
func FormatDailyText(rows []model.BucketRow) string {
	if len(rows) == 0 {
		return "No daily signals to report."
	}
	var b strings.Builder
	b.WriteString("Ticker | Latest | Decision | Amount\n")
	b.WriteString("--------------------------------------------\n")
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("%s | %.2f | %s | $%d\n", r.Ticker, r.Latest, r.Label, r.Amount))
	}
	return b.String()
}

// FormatWeeklyHTML renders the weekly signal rows for the email body.
func FormatWeeklyHTML(rows []model.TickerSignal) string {
	if len(rows) == 0 {
		return `<html><body style="font-family: Arial, sans-serif; font-size: 14px;"><p>No weekly signals to report.</p></body></html>`
	}
	var b strings.Builder
	b.WriteString(`<html>
  <body style="font-family: Arial, sans-serif; font-size: 14px;">
    <p>Here's the list of stocks favorable to invest in at the moment:</p>
    <table style="border-collapse: collapse; border:1px solid #ccc;">
      <thead>
        <tr style="background-color:#f2f2f2;">
          <th style="border:1px solid #ccc; padding:4px 8px; text-align:left;">Ticker</th>
          <th style="border:1px solid #ccc; padding:4px 8px; text-align:left;">Week flag</th>
          <th style="border:1px solid #ccc; padding:4px 8px; text-align:right;">Current price</th>
          <th style="border:1px solid #ccc; padding:4px 8px; text-align:right;">Compared with</th>
        </tr>
      </thead>
      <tbody>
`)
	for _, r := range rows {
		b.WriteString("        <tr>\n")
		b.WriteString(fmt.Sprintf("          <td style=\"border:1px solid #ccc; padding:4px 8px;\">%s</td>\n", r.Ticker))
		b.WriteString(fmt.Sprintf("          <td style=\"border:1px solid #ccc; padding:4px 8px;\">%s</td>\n", r.WindowLabel))
		b.WriteString(fmt.Sprintf("          <td style=\"border:1px solid #ccc; padding:4px 8px; text-align:right;\">%.4f</td>\n", r.CurrentPrice))
		b.WriteString(fmt.Sprintf("          <td style=\"border:1px solid #ccc; padding:4px 8px; text-align:right;\">%.4f</td>\n", r.CompareValue))
		b.WriteString("        </tr>\n")
	}
	b.WriteString("      </tbody>\n    </table>\n  </body>\n</html>")
	return b.String()
}

// FormatWeeklyText is the plain-text fallback of the weekly table.
func FormatWeeklyText(rows []model.TickerSignal) string {
	if len(rows) == 0 {
		return "No weekly signals to report."
	}
	var b strings.Builder
	b.WriteString("Ticker | Week flag | Current price | Compared with\n")
	b.WriteString("-----------------------------------------------------------\n")
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("%s | %s | %.4f | %.4f\n", r.Ticker, r.WindowLabel, r.CurrentPrice, r.CompareValue))
	}
	return b.String()
}
