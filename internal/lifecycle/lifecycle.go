// Package lifecycle is the order state machine. Every decision about the next
// status of an order goes through Initial or Next, keyed by the order's Kind.
package lifecycle

import (
	"errors"
	"fmt"

	"github.com/terraemar-pos/api/internal/database"
)

var ErrInvalidTransition = errors.New("invalid status transition")

type Action string

const (
	ActionAccept       Action = "accept"
	ActionStart        Action = "start"
	ActionComplete     Action = "complete"
	ActionAutoComplete Action = "auto-complete"
	ActionCancel       Action = "cancel"
	ActionSettle       Action = "settle"
)

// Kind identifies the behaviour variant of an order.
type Kind struct {
	Origin          database.OrderOrigin
	RequiresKitchen bool
}

// Outcome is the target status plus the timestamps the transition must stamp.
type Outcome struct {
	Status         database.OrderStatus
	StampAccepted  bool
	StampClosed    bool
	StampCancelled bool
}

// Initial returns the status a freshly created order starts in.
func Initial(k Kind) Outcome {
	switch {
	case k.Origin == database.OrderOriginONLINE:
		return Outcome{Status: database.OrderStatusAWAITINGACCEPTANCE}
	case k.Origin == database.OrderOriginTAKEAWAY && !k.RequiresKitchen:
		return Outcome{Status: database.OrderStatusCOMPLETED, StampClosed: true}
	default:
		return Outcome{Status: database.OrderStatusNEW}
	}
}

// Next applies action to an order of kind k currently in status from.
func Next(k Kind, from database.OrderStatus, a Action) (Outcome, error) {
	switch a {
	case ActionAccept:
		if from != database.OrderStatusAWAITINGACCEPTANCE {
			break
		}
		if k.RequiresKitchen {
			return Outcome{Status: database.OrderStatusNEW, StampAccepted: true}, nil
		}
		return Outcome{Status: database.OrderStatusCOMPLETED, StampAccepted: true}, nil

	case ActionStart:
		if from == database.OrderStatusNEW {
			return Outcome{Status: database.OrderStatusPREPARING}, nil
		}

	case ActionComplete:
		if from == database.OrderStatusPREPARING {
			return completed(k), nil
		}

	case ActionAutoComplete:
		if k.RequiresKitchen {
			break
		}
		if from == database.OrderStatusNEW || from == database.OrderStatusPREPARING {
			return completed(k), nil
		}

	case ActionCancel:
		switch from {
		case database.OrderStatusNEW, database.OrderStatusPREPARING, database.OrderStatusAWAITINGACCEPTANCE:
			return Outcome{Status: database.OrderStatusCANCELLED, StampCancelled: true}, nil
		}

	case ActionSettle:
		if k.Origin == database.OrderOriginONLINE && from == database.OrderStatusCOMPLETED {
			return Outcome{Status: database.OrderStatusCOMPLETED, StampClosed: true}, nil
		}

	default:
		return Outcome{}, fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, a)
	}
	return Outcome{}, fmt.Errorf("%w: cannot %s a %s order in %s", ErrInvalidTransition, a, originLabel(k.Origin), from)
}

// Online orders stay unsettled until their handoff is confirmed.
func completed(k Kind) Outcome {
	return Outcome{
		Status:      database.OrderStatusCOMPLETED,
		StampClosed: k.Origin != database.OrderOriginONLINE,
	}
}

// KitchenVisible reports whether an order belongs on the kitchen board.
func KitchenVisible(s database.OrderStatus, requiresKitchen bool) bool {
	if !requiresKitchen {
		return false
	}
	switch s {
	case database.OrderStatusNEW, database.OrderStatusPREPARING, database.OrderStatusCOMPLETED:
		return true
	}
	return false
}

func originLabel(o database.OrderOrigin) string {
	switch o {
	case database.OrderOriginDINEIN:
		return "dine-in"
	case database.OrderOriginTAKEAWAY:
		return "takeaway"
	case database.OrderOriginONLINE:
		return "online"
	}
	return string(o)
}
