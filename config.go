package main

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// LayoutPreferences control page geometry and the layout engine's optional
// behaviours. Units are layout units; one staff space is 10 units at zoom 1.
type LayoutPreferences struct {
	PageWidth         float64
	PageHeight        float64
	LeftMargin        float64
	RightMargin       float64
	TopMargin         float64
	BottomMargin      float64
	StaffGap          float64
	SystemGap         float64
	Zoom              float64
	NoteSpacing       float64
	EntropyScale      float64
	HideEmptySystems  bool
	MultiMeasureRests bool
	StretchLastSystem bool
}

func defaultLayoutPreferences() LayoutPreferences {
	return LayoutPreferences{
		PageWidth:         816,
		PageHeight:        1056,
		LeftMargin:        30,
		RightMargin:       30,
		TopMargin:         40,
		BottomMargin:      40,
		StaffGap:          30,
		SystemGap:         50,
		Zoom:              1,
		NoteSpacing:       14,
		EntropyScale:      0.25,
		MultiMeasureRests: true,
		StretchLastSystem: true,
	}
}

type Config struct {
	SaveDirectory  string
	Layout         LayoutPreferences
	HighlightDelay time.Duration
	ScrollDelay    time.Duration
	LogLevel       slog.Level
	LogFile        string
	Bindings       map[string]string
}

func defaultConfig() *Config {
	return &Config{
		Layout:         defaultLayoutPreferences(),
		HighlightDelay: 50 * time.Millisecond,
		ScrollDelay:    30 * time.Millisecond,
		LogLevel:       slog.LevelInfo,
		Bindings:       map[string]string{},
	}
}

func loadConfig() *Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return defaultConfig()
	}

	file, err := os.Open(filepath.Join(homeDir, ".staverc"))
	if err != nil {
		return defaultConfig()
	}
	defer file.Close()

	return parseConfig(file, homeDir)
}

func parseConfig(r io.Reader, homeDir string) *Config {
	config := defaultConfig()

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			Logger().Warn("ignoring malformed config line", "line", lineNo)
			continue
		}

		rawKey := strings.TrimSpace(parts[0])
		key := strings.ToLower(rawKey)
		value := strings.TrimSpace(parts[1])

		// key names are case sensitive ("G" is not "g")
		if strings.HasPrefix(key, "bind.") {
			config.Bindings[rawKey[len("bind."):]] = value
			continue
		}

		if !config.apply(key, value, homeDir) {
			Logger().Warn("ignoring config value", "line", lineNo, "key", key, "value", value)
		}
	}

	return config
}

func (c *Config) apply(key, value, homeDir string) bool {
	layout := &c.Layout
	switch key {
	case "savedirectory", "save_directory", "export_dir":
		if strings.HasPrefix(value, "~") {
			value = filepath.Join(homeDir, strings.TrimPrefix(value, "~"))
		}
		if !filepath.IsAbs(value) {
			if absPath, err := filepath.Abs(value); err == nil {
				value = absPath
			}
		}
		c.SaveDirectory = value
		return true
	case "page_width":
		return parsePositive(value, &layout.PageWidth)
	case "page_height":
		return parsePositive(value, &layout.PageHeight)
	case "margin_left":
		return parseNonNegative(value, &layout.LeftMargin)
	case "margin_right":
		return parseNonNegative(value, &layout.RightMargin)
	case "margin_top":
		return parseNonNegative(value, &layout.TopMargin)
	case "margin_bottom":
		return parseNonNegative(value, &layout.BottomMargin)
	case "staff_gap":
		return parseNonNegative(value, &layout.StaffGap)
	case "system_gap":
		return parseNonNegative(value, &layout.SystemGap)
	case "zoom":
		return parsePositive(value, &layout.Zoom)
	case "note_spacing":
		return parseNonNegative(value, &layout.NoteSpacing)
	case "entropy_scale":
		return parseNonNegative(value, &layout.EntropyScale)
	case "hide_empty_systems":
		return parseBool(value, &layout.HideEmptySystems)
	case "multimeasure_rests", "multi_measure_rests":
		return parseBool(value, &layout.MultiMeasureRests)
	case "stretch_last_system":
		return parseBool(value, &layout.StretchLastSystem)
	case "highlight_delay_ms":
		return parseMillis(value, &c.HighlightDelay)
	case "scroll_delay_ms":
		return parseMillis(value, &c.ScrollDelay)
	case "log_level":
		level, ok := parseLogLevel(value)
		if ok {
			c.LogLevel = level
		}
		return ok
	case "log_file":
		if strings.HasPrefix(value, "~") {
			value = filepath.Join(homeDir, strings.TrimPrefix(value, "~"))
		}
		c.LogFile = value
		return true
	}
	return false
}

func parsePositive(value string, dst *float64) bool {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f <= 0 {
		return false
	}
	*dst = f
	return true
}

func parseNonNegative(value string, dst *float64) bool {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f < 0 {
		return false
	}
	*dst = f
	return true
}

func parseBool(value string, dst *bool) bool {
	switch strings.ToLower(value) {
	case "true", "yes", "on", "1":
		*dst = true
	case "false", "no", "off", "0":
		*dst = false
	default:
		return false
	}
	return true
}

func parseMillis(value string, dst *time.Duration) bool {
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return false
	}
	*dst = time.Duration(n) * time.Millisecond
	return true
}

func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" {
		return filename
	}
	os.MkdirAll(c.SaveDirectory, 0755)
	return filepath.Join(c.SaveDirectory, filename)
}
