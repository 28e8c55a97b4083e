package tui

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	colorGreen  = lipgloss.Color("40")  // Bright green for "online"
	colorYellow = lipgloss.Color("220") // Yellow for "waiting"
	colorRed    = lipgloss.Color("196") // Red for errors
	colorCyan   = lipgloss.Color("39")  // Cyan for the assistant
	colorGray   = lipgloss.Color("244") // Gray for labels
	colorWhite  = lipgloss.Color("255") // White for values
	colorDim    = lipgloss.Color("240") // Dim gray for secondary text
)

// Text styles
var (
	// Title style for "nexus" header
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	// Hint style for key help
	hintStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	// Label style for field names
	labelStyle = lipgloss.NewStyle().
			Width(20).
			Foreground(colorGray)

	// Value style for field values
	valueStyle = lipgloss.NewStyle().
			Foreground(colorWhite)

	// Status styles
	statusOnlineStyle = lipgloss.NewStyle().
				Foreground(colorGreen).
				Bold(true)

	statusWaitingStyle = lipgloss.NewStyle().
				Foreground(colorYellow)

	statusOfflineStyle = lipgloss.NewStyle().
				Foreground(colorRed)

	// Transcript styles
	botNameStyle = lipgloss.NewStyle().
			Foreground(colorCyan).
			Bold(true)

	userNameStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	messageStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			PaddingLeft(2)

	timeStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	// Input line
	promptStyle = lipgloss.NewStyle().
			Foreground(colorCyan)

	formLabelStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	// Request log styles
	methodGetStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Width(7)

	methodPostStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			Width(7)

	methodOtherStyle = lipgloss.NewStyle().
				Foreground(colorCyan).
				Width(7)

	statusOKStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	statusErrorStyle = lipgloss.NewStyle().
				Foreground(colorRed)

	pathStyle = lipgloss.NewStyle().
			Foreground(colorWhite)

	durationStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed)
)

// StatusText returns styled connection status text
func StatusText(status string) string {
	switch status {
	case "online":
		return statusOnlineStyle.Render("online")
	case "waiting":
		return statusWaitingStyle.Render("waiting")
	case "offline":
		return statusOfflineStyle.Render("offline")
	default:
		return valueStyle.Render(status)
	}
}

// MethodText returns styled HTTP method
func MethodText(method string) string {
	switch method {
	case "GET":
		return methodGetStyle.Render(method)
	case "POST":
		return methodPostStyle.Render(method)
	default:
		return methodOtherStyle.Render(method)
	}
}

// StatusCodeText returns styled HTTP status code. 0 means no response.
func StatusCodeText(code int) string {
	switch {
	case code == 0:
		return statusErrorStyle.Render("ERR")
	case code >= 200 && code < 400:
		return statusOKStyle.Render(strconv.Itoa(code))
	default:
		return statusErrorStyle.Render(strconv.Itoa(code))
	}
}
