package orders

import "bookcheckout/models"

const neutralColor = "#6b7280"

var statusLabels = map[string]models.StatusLabel{
	"captured": {Text: "Paid", Color: "#22c55e"},
	"awaiting": {Text: "Pending", Color: "#f59e0b"},
	"canceled": {Text: "Canceled", Color: "#ef4444"},
}

// PaymentStatusLabel maps a raw payment status to its label. Unknown values
// pass through unchanged with a neutral color.
func PaymentStatusLabel(status string) models.StatusLabel {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return models.StatusLabel{Text: status, Color: neutralColor}
}
