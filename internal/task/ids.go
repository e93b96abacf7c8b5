package task

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// idNamespace seeds deterministic ids for records stored without one.
var idNamespace = uuid.MustParse("6f1c4f0e-2b7a-4c55-9d2e-0b8f6a1d3c42")

// NewID returns a fresh random id for a new task or step.
func NewID() string {
	return uuid.NewString()
}

// BackfillIDs assigns ids to tasks and steps that lack one. The ids derive
// from position and content, so the same document always gets the same ids
// until it is saved with them.
func BackfillIDs(tasks []*Task) bool {
	changed := false
	for i, t := range tasks {
		if t.ID == "" {
			key := strconv.Itoa(i) + "\x00" + t.Title + "\x00" + t.Description
			t.ID = uuid.NewSHA1(idNamespace, []byte(key)).String()
			changed = true
		}
		taskNS := uuid.NewSHA1(idNamespace, []byte(t.ID))
		for j, s := range t.Steps {
			if s == nil {
				t.Steps[j] = &Step{}
				s = t.Steps[j]
			}
			if s.ID == "" {
				key := strconv.Itoa(j) + "\x00" + s.Description
				s.ID = uuid.NewSHA1(taskNS, []byte(key)).String()
				changed = true
			}
		}
	}
	return changed
}

var nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9]+`)

// DataFileSuffix ends every task store filename.
const DataFileSuffix = "_Task_Data.json"

// DataFileName returns the store filename for a project name,
// e.g. "Le Jarvis" becomes "Le_Jarvis_Task_Data.json".
func DataFileName(project string) string {
	name := nonAlphanumeric.ReplaceAllString(project, "_")
	name = strings.Trim(name, "_")
	if name == "" {
		name = "Tasks"
	}
	return name + DataFileSuffix
}
