// notify/desktop.go
package notify

import "github.com/gen2brain/beeep"

// Desktop delivers via the platform notification mechanism. Missing
// permissions or a headless host surface as an error the log swallows.
type Desktop struct{}

func (Desktop) Deliver(n Notification) error {
	return beeep.Notify(n.Title, n.Message, "")
}

// Nop discards every notification. Used when desktop delivery is
// disabled and in tests.
type Nop struct{}

func (Nop) Deliver(Notification) error { return nil }
