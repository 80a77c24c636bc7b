package output

import "fmt"

// Summary formats the cached mean for the text panel.
func Summary(mean float64) string {
	return fmt.Sprintf("Mean wind speed %.2f m/s", mean)
}
