package notify

import (
	"fmt"
	"time"

	domain "github.com/donaldgifford/restock-monitor/pkg/types"
)

// Embed colors.
const (
	ColorGreen  = 0x00C853 // in stock, running
	ColorOrange = 0xFFA500 // paused, warnings
	ColorRed    = 0xFF0000 // failures
)

const restockTitle = "🛒 入荷しました！"

var jst = time.FixedZone("JST", 9*60*60)

// TimeLabel formats t as "UTC 2006-01-02 15:04:05 / JST 2006-01-02 15:04:05".
func TimeLabel(t time.Time) string {
	const layout = "2006-01-02 15:04:05"
	return fmt.Sprintf("UTC %s / JST %s", t.UTC().Format(layout), t.In(jst).Format(layout))
}

// ClockLabel is TimeLabel without the date.
func ClockLabel(t time.Time) string {
	const layout = "15:04:05"
	return fmt.Sprintf("UTC %s / JST %s", t.UTC().Format(layout), t.In(jst).Format(layout))
}

// RestockMessage builds the "now in stock" message for item.
func RestockMessage(item domain.TrackedItem, at time.Time) Message {
	return Message{
		Title:       restockTitle,
		URL:         item.URL,
		Description: fmt.Sprintf("**%s**\n[今すぐ購入する](%s)", item.Name, item.URL),
		Color:       ColorGreen,
		Timestamp:   at,
		Footer:      TimeLabel(at),
	}
}
