package commands

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/wonny/aegis-b3/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// RunMetadata holds run header fields
type RunMetadata struct {
	Command    string
	RunID      string
	Strategy   string
	DataSource string
	Tickers    int
	Cached     bool
	StartedAt  time.Time
}

// PrintRunHeader prints a formatted run header
func PrintRunHeader(meta RunMetadata) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", meta.Command)
	PrintSeparator()
	PrintKeyValue("Run ID", meta.RunID, 10)
	PrintKeyValue("Strategy", meta.Strategy, 10)
	PrintKeyValue("Source", meta.DataSource, 10)
	PrintKeyValue("Tickers", fmt.Sprint(meta.Tickers), 10)
	PrintKeyValue("Started", meta.StartedAt.Format(time.RFC3339), 10)
	if meta.Cached {
		PrintKeyValue("Cache", "hit", 10)
	}
	PrintSeparator()
}

// PrintStageSummary prints one row per pipeline stage
// Example: S2_TECHNICAL  15  15  insufficient_history=2  12ms
func PrintStageSummary(stages []contracts.StageResult) {
	widths := []int{14, 6, 6, 40, 10}
	PrintTableHeader([]string{"Stage", "In", "Out", "Faults", "Duration"}, widths)
	for _, s := range stages {
		PrintTableRow([]string{
			string(s.Stage),
			fmt.Sprint(s.InputCount),
			fmt.Sprint(s.OutputCount),
			formatFaults(s.Faults),
			fmt.Sprintf("%dms", s.Duration),
		}, widths)
	}
}

// PrintRunCompletion prints run completion message
func PrintRunCompletion(result *contracts.RunResult) {
	fmt.Println()
	fmt.Printf("✅ Run %s completed in %.2fs (%d scored, %d excluded)\n",
		shortID(result.RunID),
		float64(result.Duration)/1000,
		result.Table.Len(),
		len(result.Table.Excluded),
	)
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Printf("ℹ️  %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []string, widths []int) {
	PrintTableRow(columns, widths)

	// Separator line
	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Println(strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(values []string, widths []int) {
	for i, val := range values {
		fmt.Printf("%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Print("  ")
		}
	}
	fmt.Println()
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}

func formatFaults(faults map[contracts.FaultReason]int) string {
	if len(faults) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(faults))
	for reason, n := range faults {
		parts = append(parts, fmt.Sprintf("%s=%d", reason, n))
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// splitList parses "A,B, C" into [A B C]
func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
