package heuristic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/proof-extractor/constants"
)

const linkedinCard = "Community Lead\nEkoLance · part-time\nNov 2022 - Jan 2025\nGermany · Remote"

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		text string
		want constants.SchemaKind
	}{
		{"empty", "", constants.SchemaGeneric},
		{"whitespace only", "  \n\t\n   ", constants.SchemaGeneric},
		{"linkedin with type on second line", linkedinCard, constants.SchemaLinkedIn},
		{
			"linkedin with duration annotation",
			"Backend Engineer\nAcme\nJan 2020 - Present · 4 yrs 2 mos",
			constants.SchemaLinkedIn,
		},
		{
			"separator without other signals",
			"Notes · misc\nnothing else here",
			constants.SchemaGeneric,
		},
		{
			"caps header with bullets",
			"SOFTWARE ENGINEERING INTERN\nAcme Labs\n- Built internal APIs",
			constants.SchemaResumeBlock,
		},
		{
			"caps header with date range on first line",
			"DEVREL LEAD JAN 2021 - DEC 2022\nGlobal Reach",
			constants.SchemaResumeBlock,
		},
		{
			"caps header with date range elsewhere",
			"PROJECT COORDINATOR\nGlobal Reach NGO\nJan 2021 - Dec 2022",
			constants.SchemaResumeBlock,
		},
		{
			"caps header without dates or bullets",
			"PROJECT COORDINATOR\nGlobal Reach NGO",
			constants.SchemaGeneric,
		},
		{"plain prose", "I taught myself Go.\nIt was fun.", constants.SchemaGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.text))
		})
	}
}

func TestDetectIsTotalAndDeterministic(t *testing.T) {
	inputs := []string{
		"", "x", "·", "• • •", "2020 - 2021", "ALL CAPS", linkedinCard,
		"\r\n\r\nWEIRD\r\n* bullet", "日本語のテキスト · full-time\n二行目",
	}
	valid := map[constants.SchemaKind]bool{
		constants.SchemaLinkedIn:    true,
		constants.SchemaResumeBlock: true,
		constants.SchemaGeneric:     true,
	}
	for _, in := range inputs {
		first := Detect(in)
		assert.True(t, valid[first], "input %q produced %q", in, first)
		assert.Equal(t, first, Detect(in), "input %q not deterministic", in)
	}
}

func TestDateRange(t *testing.T) {
	got, ok := DateRange("worked there nov 2022 – present, remote")
	assert.True(t, ok)
	assert.Equal(t, "nov 2022 - present", got)

	got, ok = DateRange("2019-2021")
	assert.True(t, ok)
	assert.Equal(t, "2019 - 2021", got)

	_, ok = DateRange("March - June 2025")
	assert.False(t, ok)
}
