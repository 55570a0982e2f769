package services

import (
	"strings"
	"testing"
	"time"

	"github.com/9pavankumar/dailyGMPalert/config"
	"github.com/9pavankumar/dailyGMPalert/shared"
)

var pipelineToday = time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)

const livePageHTML = `
<html><body>
<div class="navbar"><table><tr><td>Home</td></tr></table></div>
<table id="report">
  <thead>
    <tr><th>Company ▲▼</th><th>Open ▲▼</th><th>Close ▲▼</th><th>IPO Size ▲▼</th><th>GMP ▲▼</th><th>Sub ▲▼</th><th>Listing</th></tr>
  </thead>
  <tbody>
    <tr><td>Acme Ltd U</td><td>10-Oct</td><td>12-Oct</td><td>500 Cr</td><td>&#8377; 20 (4.00%)</td><td>12.5x</td><td></td></tr>
    <tr><td>Beta Ltd</td><td>30-Sep</td><td>2-Oct</td><td>450 Cr</td><td>&#8377; 10 (2.00%)</td><td>8x</td><td></td></tr>
    <tr><td>Gamma SME Ltd</td><td>10-Oct</td><td>12-Oct</td><td>40 Cr</td><td>&#8377; 5</td><td>2x</td><td></td></tr>
    <tr><td>Delta Ltd</td><td>1-Sep</td><td>3-Sep</td><td>600 Cr</td><td>&#8377; 30</td><td>50x</td><td>&#10060; Listed</td></tr>
  </tbody>
</table>
</body></html>`

func openPolicy() config.RankPolicy {
	return config.RankPolicy{
		RelevanceWindow: config.WindowNotYetClosed,
		MinSizeCr:       400,
		MinPremium:      8.5,
	}
}

func TestPipelineRunProducesDigest(t *testing.T) {
	pipeline := NewPipeline(openPolicy())

	outcome, err := pipeline.Run(livePageHTML, pipelineToday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Kind != OutcomeSummary {
		t.Fatalf("got outcome %q, want summary", outcome.Kind)
	}
	if outcome.Digest == nil || len(outcome.Digest.All) != 2 {
		t.Fatalf("digest: %+v", outcome.Digest)
	}

	// Acme leads: larger size and larger premium than Beta. Gamma is SME,
	// Delta carries the closed-listing marker.
	if outcome.Digest.All[0].Name != "Acme Ltd" || outcome.Digest.All[1].Name != "Beta Ltd" {
		t.Fatalf("order: %s, %s", outcome.Digest.All[0].Name, outcome.Digest.All[1].Name)
	}

	for _, want := range []string{
		"📢 IPO Updates - 01-10-25",
		"1. Acme Ltd (Opens: 10-Oct, Closes: 12-Oct)",
		"2. Beta Ltd (Opens: 30-Sep, Closes: 02-Oct)",
		"💰 Issue Size: ₹500.00 Cr",
	} {
		if !strings.Contains(outcome.Message, want) {
			t.Errorf("message missing %q\n%s", want, outcome.Message)
		}
	}
}

func TestPipelineRunNoUsableTable(t *testing.T) {
	pipeline := NewPipeline(openPolicy())

	for _, markup := range []string{
		"<html><body><p>Report unavailable.</p></body></html>",
		"<table><tr><td>No records found</td></tr></table>",
	} {
		outcome, err := pipeline.Run(markup, pipelineToday)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if outcome.Kind != OutcomeNoData {
			t.Fatalf("got outcome %q, want no_data", outcome.Kind)
		}
		if outcome.Digest != nil {
			t.Fatalf("no-data outcome should carry no digest: %+v", outcome.Digest)
		}
	}
}

func TestPipelineRunUnrecognizableTable(t *testing.T) {
	pipeline := NewPipeline(openPolicy())

	markup := `
<table>
  <tr><th>Alpha</th><th>Beta</th></tr>
  <tr><td>1</td><td>2</td></tr>
  <tr><td>3</td><td>4</td></tr>
</table>`

	_, err := pipeline.Run(markup, pipelineToday)
	if err == nil {
		t.Fatal("expected a normalization error")
	}
	if !shared.IsNormalizationError(err) {
		t.Fatalf("expected a normalization error, got %v", err)
	}
}

func TestPipelineRunEmptySurvivorSet(t *testing.T) {
	pipeline := NewPipeline(openPolicy())

	markup := `
<table>
  <tr><th>Company</th><th>Close</th><th>IPO Size</th><th>GMP</th></tr>
  <tr><td>Tiny Ltd</td><td>12-Oct</td><td>50 Cr</td><td>&#8377; 2</td></tr>
</table>`

	outcome, err := pipeline.Run(markup, pipelineToday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Kind != OutcomeSummary {
		t.Fatalf("got outcome %q, want summary", outcome.Kind)
	}
	if !strings.Contains(outcome.Message, "No IPOs available today.") {
		t.Errorf("empty survivor set should render the empty digest:\n%s", outcome.Message)
	}
}
