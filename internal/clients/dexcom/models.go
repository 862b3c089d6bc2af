package dexcom

import (
	"math"
	"regexp"
	"strconv"
	"time"

	"github.com/aristath/glucotrix/internal/domain"
)

// Trend strings the Share API reports, in trend-index order 0-9.
var trendNames = []string{
	"None",
	"DoubleUp",
	"SingleUp",
	"FortyFiveUp",
	"Flat",
	"FortyFiveDown",
	"SingleDown",
	"DoubleDown",
	"NotComputable",
	"RateOutOfRange",
}

var trendDescriptions = []string{
	"",
	"rising quickly",
	"rising",
	"rising slightly",
	"steady",
	"falling slightly",
	"falling",
	"falling quickly",
	"unable to determine trend",
	"trend unavailable",
}

var trendArrows = []string{
	"",
	"↑↑",
	"↑",
	"↗",
	"→",
	"↘",
	"↓",
	"↓↓",
	"?",
	"-",
}

// mg/dL to mmol/L conversion factor.
const mmolConversionFactor = 0.0555

// shareReading is one glucose value as the Share API serializes it.
type shareReading struct {
	WT    string `json:"WT"` // wall time, "Date(ms)" or "Date(ms±hhmm)"
	ST    string `json:"ST"`
	DT    string `json:"DT"`
	Value int    `json:"Value"`
	Trend string `json:"Trend"`
}

// shareTimePattern matches the API's "Date(1703830395000-0500)" format.
var shareTimePattern = regexp.MustCompile(`Date\((\d+)([+-]\d{4})?\)`)

// parseShareTime converts a Share timestamp to RFC 3339, keeping the zone
// offset when the API supplies one.
func parseShareTime(s string) string {
	m := shareTimePattern.FindStringSubmatch(s)
	if m == nil {
		return ""
	}

	ms, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return ""
	}

	t := time.UnixMilli(ms).UTC()
	if m[2] != "" {
		hours, _ := strconv.Atoi(m[2][:3])
		minutes, _ := strconv.Atoi(m[2][3:])
		if hours < 0 {
			minutes = -minutes
		}
		t = t.In(time.FixedZone("", hours*3600+minutes*60))
	}
	return t.Format(time.RFC3339)
}

// trendIndex maps a trend name to its numeric index; unknown names map to
// NotComputable.
func trendIndex(name string) int {
	for i, n := range trendNames {
		if n == name {
			return i
		}
	}
	return 8
}

// toReading converts an API value to the domain model. Delta fields are
// left unset; pairing consecutive readings is the data client's job.
func (r shareReading) toReading() domain.Reading {
	idx := trendIndex(r.Trend)
	return domain.Reading{
		Value:            r.Value,
		MmolL:            math.Round(float64(r.Value)*mmolConversionFactor*10) / 10,
		Trend:            idx,
		TrendDirection:   trendNames[idx],
		TrendDescription: trendDescriptions[idx],
		TrendArrow:       trendArrows[idx],
		Timestamp:        parseShareTime(r.WT),
	}
}
