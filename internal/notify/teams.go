package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Recipient is a rider to mention in an announcement.
type Recipient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TripInfo is the slice of a trip the cards show.
type TripInfo struct {
	Source        string
	Destination   string
	DepartureTime time.Time
	VehicleName   string
}

// Notifier posts adaptive cards to a Teams incoming webhook. When no
// webhook URL is configured every call is a silent no-op, and delivery
// failures are logged, never propagated; an announcement must not undo a
// committed booking or status change.
type Notifier struct {
	WebhookURL string
	Client     *http.Client
}

// NewFromEnv builds a Notifier from TEAMS_WEBHOOK_URL.
func NewFromEnv() *Notifier {
	return &Notifier{
		WebhookURL: os.Getenv("TEAMS_WEBHOOK_URL"),
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// StatusChanged announces a delay or cancellation to every reserved rider.
func (n *Notifier) StatusChanged(trip TripInfo, status, description string, to []Recipient) {
	if len(to) == 0 {
		return
	}

	title := "【Service update】"
	color := "Accent"
	switch status {
	case "delayed":
		title = "【Delay notice】"
		color = "Warning"
	case "cancelled":
		title = "【Cancellation notice】"
		color = "Attention"
	}
	if description == "" {
		description = "See the admin dashboard for details."
	}

	mentionText, entities := buildMentions(to)
	card := adaptiveCard([]map[string]any{
		textBlock(fmt.Sprintf("%s Campus shuttle", title), "Bolder", color),
		wrapBlock(fmt.Sprintf("The trip below is now **%s**.", status)),
		factSet(map[string]string{
			"Trip":    tripLine(trip),
			"Details": description,
		}),
		wrapBlock(mentionText),
	}, entities)

	n.post(card)
}

// DepartureReminder tells reserved riders their shuttle leaves soon.
func (n *Notifier) DepartureReminder(trip TripInfo, to []Recipient) {
	if len(to) == 0 {
		return
	}

	mentionText, entities := buildMentions(to)
	card := adaptiveCard([]map[string]any{
		textBlock("⏰ Departure coming up", "Bolder", "Accent"),
		wrapBlock("Your reserved shuttle departs within **2 hours**. Please be on time."),
		factSet(map[string]string{
			"Departure": trip.DepartureTime.Format("15:04"),
			"Route":     fmt.Sprintf("%s → %s", trip.Source, trip.Destination),
			"Vehicle":   trip.VehicleName,
		}),
		wrapBlock(mentionText),
	}, entities)

	n.post(card)
}

// LastMinuteReminder targets a single rider who booked inside the window.
func (n *Notifier) LastMinuteReminder(trip TripInfo, to Recipient) {
	mentionText, entities := buildMentions([]Recipient{to})
	card := adaptiveCard([]map[string]any{
		textBlock("⏰ Your shuttle departs soon", "Bolder", "Attention"),
		wrapBlock("Thanks for booking — the shuttle leaves **shortly**."),
		factSet(map[string]string{
			"Departure": trip.DepartureTime.Format("15:04"),
			"Route":     fmt.Sprintf("%s → %s", trip.Source, trip.Destination),
			"Vehicle":   trip.VehicleName,
		}),
		wrapBlock(mentionText),
	}, entities)

	n.post(card)
}

func tripLine(trip TripInfo) string {
	return fmt.Sprintf("%s %s, %s → %s",
		trip.DepartureTime.Format("01/02 15:04"),
		trip.VehicleName,
		trip.Source,
		trip.Destination,
	)
}

func buildMentions(to []Recipient) (string, []map[string]any) {
	parts := make([]string, 0, len(to))
	entities := make([]map[string]any, 0, len(to))
	for _, r := range to {
		tag := fmt.Sprintf("<at>%s</at>", r.Name)
		parts = append(parts, tag)
		entities = append(entities, map[string]any{
			"type": "mention",
			"text": tag,
			"mentioned": map[string]any{
				"id":   r.Email,
				"name": r.Name,
			},
		})
	}
	return strings.Join(parts, " "), entities
}

func textBlock(text, weight, color string) map[string]any {
	return map[string]any{
		"type":   "TextBlock",
		"size":   "Medium",
		"weight": weight,
		"color":  color,
		"text":   text,
	}
}

func wrapBlock(text string) map[string]any {
	return map[string]any{
		"type": "TextBlock",
		"text": text,
		"wrap": true,
	}
}

func factSet(facts map[string]string) map[string]any {
	items := make([]map[string]string, 0, len(facts))
	for _, key := range []string{"Trip", "Departure", "Route", "Vehicle", "Details"} {
		if value, ok := facts[key]; ok {
			items = append(items, map[string]string{"title": key + ":", "value": value})
		}
	}
	return map[string]any{
		"type":  "FactSet",
		"facts": items,
	}
}

func adaptiveCard(body []map[string]any, entities []map[string]any) map[string]any {
	return map[string]any{
		"type": "message",
		"attachments": []map[string]any{
			{
				"contentType": "application/vnd.microsoft.card.adaptive",
				"content": map[string]any{
					"type":    "AdaptiveCard",
					"$schema": "http://adaptivecards.io/schemas/adaptive-card.json",
					"version": "1.2",
					"body":    body,
					"msteams": map[string]any{"entities": entities},
				},
			},
		},
	}
}

func (n *Notifier) post(card map[string]any) {
	if n.WebhookURL == "" {
		logrus.Debug("teams webhook not configured, skipping notification")
		return
	}

	payload, err := json.Marshal(card)
	if err != nil {
		logrus.WithError(err).Error("teams card marshal failed")
		return
	}

	client := n.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	resp, err := client.Post(n.WebhookURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		logrus.WithError(err).Warn("teams notification failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		logrus.WithField("status", resp.StatusCode).Warn("teams webhook rejected notification")
		return
	}
	logrus.Debug("teams notification sent")
}
