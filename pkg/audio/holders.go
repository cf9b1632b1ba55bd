package audio

import (
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/process"
)

// Holder is a process which currently holds an active capture session.
type Holder struct {
	Pid  uint32 `json:"pid"`
	Name string `json:"name,omitempty"`
}

func (this Holder) String() string {
	if this.Name == "" {
		return fmt.Sprintf("pid %d", this.Pid)
	}
	return this.Name
}

type Holders []Holder

func (this Holders) IsZero() bool {
	return len(this) <= 0
}

func (this Holders) HasContent() bool {
	return !this.IsZero()
}

func (this Holders) String() string {
	result := make([]string, len(this))
	for i, v := range this {
		result[i] = v.String()
	}
	return strings.Join(result, ", ")
}

// FindHolders returns all other processes which are currently capturing from
// a microphone. Platforms which cannot tell return nothing.
func FindHolders(self uint32) (Holders, error) {
	pids, err := findHolderPids()
	if err != nil {
		return nil, err
	}
	var result Holders
	seen := map[uint32]bool{self: true}
	for _, pid := range pids {
		if seen[pid] {
			continue
		}
		seen[pid] = true
		result = append(result, Holder{
			Pid:  pid,
			Name: processName(pid),
		})
	}
	return result, nil
}

func processName(pid uint32) string {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return ""
	}
	name, err := p.Name()
	if err != nil {
		return ""
	}
	return name
}
