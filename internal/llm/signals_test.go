package llm

import (
	"strings"
	"testing"
)

func newTestSignals(t *testing.T) *Signals {
	t.Helper()
	s, err := NewSignals(t.TempDir())
	if err != nil {
		t.Fatalf("NewSignals failed: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestSignals_KillAndClear(t *testing.T) {
	s := newTestSignals(t)

	if s.ShouldStop() {
		t.Fatal("fresh signals should not report stop")
	}

	if err := s.SendKill(); err != nil {
		t.Fatalf("SendKill failed: %v", err)
	}
	if !s.ShouldStop() {
		t.Error("ShouldStop() = false after SendKill")
	}

	s.ClearSignals()
	if s.ShouldStop() {
		t.Error("ShouldStop() = true after ClearSignals")
	}
}

func TestSignals_Pause(t *testing.T) {
	s := newTestSignals(t)

	if s.ShouldPause() {
		t.Fatal("fresh signals should not report pause")
	}
	if err := s.SendPause(); err != nil {
		t.Fatalf("SendPause failed: %v", err)
	}
	if !s.ShouldPause() {
		t.Error("ShouldPause() = false after SendPause")
	}

	if err := s.SendResume(); err != nil {
		t.Fatalf("SendResume failed: %v", err)
	}
	if s.ShouldPause() {
		t.Error("ShouldPause() = true after SendResume")
	}
}

func TestSignals_Notes(t *testing.T) {
	s := newTestSignals(t)

	initial := s.ReadNotes()
	if !strings.Contains(initial, "Run Notes") {
		t.Errorf("initial notes missing header: %q", initial)
	}

	if err := s.AppendNote("venue confirmed"); err != nil {
		t.Fatalf("AppendNote failed: %v", err)
	}
	if got := s.ReadNotes(); !strings.Contains(got, "venue confirmed") {
		t.Errorf("appended note missing: %q", got)
	}
}

func TestSignals_AgentMessages(t *testing.T) {
	s := newTestSignals(t)

	if err := s.WriteAgentMessage("Content Writer", "use the outline"); err != nil {
		t.Fatalf("WriteAgentMessage failed: %v", err)
	}
	if got := s.ReadAgentMessage("Content Writer"); got != "use the outline" {
		t.Errorf("ReadAgentMessage = %q", got)
	}
	if err := s.ClearAgentMessage("Content Writer"); err != nil {
		t.Fatalf("ClearAgentMessage failed: %v", err)
	}
	if got := s.ReadAgentMessage("Content Writer"); got != "" {
		t.Errorf("message not cleared: %q", got)
	}
}

func TestSanitizeRole(t *testing.T) {
	if got := sanitizeRole("Lead Sales Rep/EMEA"); got != "Lead_Sales_Rep_EMEA" {
		t.Errorf("sanitizeRole = %q", got)
	}
}
