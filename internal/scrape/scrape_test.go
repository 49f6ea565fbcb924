package scrape

import "testing"

const classListHTML = `
<html><body>
  <div class="card"><h3 title="Spin Class 45min">Spin Class</h3></div>
  <div class="card"><h3 title="Body Pump">Body Pump</h3></div>
  <div class="card"><h3 title="Spin Class Express">Spin Class</h3></div>
  <h3>Untitled heading</h3>
</body></html>`

func TestCountByTitle(t *testing.T) {
	cases := []struct {
		name string
		want int
	}{
		{"Spin Class", 2},
		{"Body Pump", 1},
		{"Aqua Aerobics", 0},
	}
	for _, tc := range cases {
		got, err := CountByTitle(classListHTML, tc.name)
		if err != nil {
			t.Fatalf("CountByTitle(%q): %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("CountByTitle(%q) = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestConfirmationShown(t *testing.T) {
	confirmed := `<div role="dialog"><p>Booking confirmed</p></div>`
	if !ConfirmationShown(confirmed) {
		t.Error("expected confirmation to be detected")
	}
	pending := `<div role="dialog"><p>Processing your booking...</p></div>`
	if ConfirmationShown(pending) {
		t.Error("did not expect confirmation in pending dialog")
	}
	// Attribute text must not count as a visible indicator.
	attrOnly := `<div data-label="Booking confirmed"><p>Please wait</p></div>`
	if ConfirmationShown(attrOnly) {
		t.Error("attribute value should not count as shown text")
	}
}
