// package formatter turns raw event payloads into display strings
package formatter

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/desertthunder/livesync/internal/models"
	"github.com/desertthunder/livesync/internal/shared"
	"golang.org/x/net/html"
)

// FormatPosition renders a millisecond duration as "MM:SS".
//
// Fractional seconds are discarded and there is no hour component, so an hour and more
// renders as "60:00", "125:07" and so on. Negative durations render as "00:00".
func FormatPosition(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	secs := ms / 1000
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// ParsePosition parses a position payload in milliseconds.
//
// Decimal payloads are truncated toward zero. NaN, infinities and values outside the
// int64 range are malformed.
func ParsePosition(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ms, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: position %q", shared.ErrMalformedPayload, raw)
	}
	return int64(f), nil
}

// ParseVolume parses a volume payload. No range is enforced, but the value must be finite.
func ParseVolume(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: volume %q", shared.ErrMalformedPayload, raw)
	}
	return v, nil
}

// FormatVolume renders a volume value as a percentage label.
func FormatVolume(raw string) string {
	v, err := ParseVolume(raw)
	if err != nil {
		return "--%"
	}
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

// ClampVolume bounds v to the 0..100 range the player accepts.
func ClampVolume(v int) int {
	return max(0, min(100, v))
}

// PlainText extracts the visible text of an HTML fragment, collapsing whitespace.
func PlainText(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				return strings.Join(strings.Fields(fragment), " ")
			}
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			if name, _ := z.TagName(); isHidden(string(name)) {
				skip++
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			if name, _ := z.TagName(); isHidden(string(name)) && skip > 0 {
				skip--
			}
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isHidden(tag string) bool {
	return tag == "script" || tag == "style" || tag == "template"
}

// FormatMessage renders a dispatched message as a single log line.
func FormatMessage(msg models.Message) string {
	switch msg.Kind {
	case models.KindPosition:
		ms, err := ParsePosition(msg.Data)
		if err != nil {
			return fmt.Sprintf("%-9s %q (malformed)", msg.Kind, msg.Data)
		}
		return fmt.Sprintf("%-9s %s", msg.Kind, FormatPosition(ms))
	case models.KindVolume:
		return fmt.Sprintf("%-9s %s", msg.Kind, FormatVolume(msg.Data))
	case models.KindError, models.KindWarn, models.KindSuccess, models.KindInfo:
		return fmt.Sprintf("%-9s %s", msg.Kind, PlainText(msg.Data))
	default:
		return string(msg.Kind)
	}
}
