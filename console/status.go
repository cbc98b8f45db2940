package console

import (
	"iter"

	"github.com/zenibako/cueplayer/cue"
)

// RunningCueLabels extracts labels from running cues
func RunningCueLabels(cues iter.Seq[*cue.Cue]) []string {
	labels := make([]string, 0)
	for c := range cues {
		if c.State() == cue.StateRunning {
			labels = append(labels, c.Label())
		}
	}
	return labels
}

// SelectedCueLabels extracts labels from selected cues
func SelectedCueLabels(selected iter.Seq[*cue.Cue]) []string {
	labels := make([]string, 0)
	for c := range selected {
		labels = append(labels, c.Label())
	}
	return labels
}
