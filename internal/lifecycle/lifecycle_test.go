package lifecycle

import (
	"errors"
	"testing"

	"github.com/terraemar-pos/api/internal/database"
)

var (
	dineInKitchen   = Kind{Origin: database.OrderOriginDINEIN, RequiresKitchen: true}
	dineInBar       = Kind{Origin: database.OrderOriginDINEIN}
	takeawayKitchen = Kind{Origin: database.OrderOriginTAKEAWAY, RequiresKitchen: true}
	takeawayBar     = Kind{Origin: database.OrderOriginTAKEAWAY}
	onlineKitchen   = Kind{Origin: database.OrderOriginONLINE, RequiresKitchen: true}
	onlineBar       = Kind{Origin: database.OrderOriginONLINE}
)

func TestInitial(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		want Outcome
	}{
		{"dine-in with kitchen items", dineInKitchen, Outcome{Status: database.OrderStatusNEW}},
		{"dine-in without kitchen items", dineInBar, Outcome{Status: database.OrderStatusNEW}},
		{"takeaway with kitchen items", takeawayKitchen, Outcome{Status: database.OrderStatusNEW}},
		{"takeaway without kitchen items", takeawayBar, Outcome{Status: database.OrderStatusCOMPLETED, StampClosed: true}},
		{"online with kitchen items", onlineKitchen, Outcome{Status: database.OrderStatusAWAITINGACCEPTANCE}},
		{"online without kitchen items", onlineBar, Outcome{Status: database.OrderStatusAWAITINGACCEPTANCE}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Initial(tt.kind); got != tt.want {
				t.Errorf("Initial(%+v) = %+v, want %+v", tt.kind, got, tt.want)
			}
		})
	}
}

func TestNext_Allowed(t *testing.T) {
	tests := []struct {
		name   string
		kind   Kind
		from   database.OrderStatus
		action Action
		want   Outcome
	}{
		{"accept kitchen order goes to NEW", onlineKitchen, database.OrderStatusAWAITINGACCEPTANCE, ActionAccept,
			Outcome{Status: database.OrderStatusNEW, StampAccepted: true}},
		{"accept non-kitchen order skips the kitchen", onlineBar, database.OrderStatusAWAITINGACCEPTANCE, ActionAccept,
			Outcome{Status: database.OrderStatusCOMPLETED, StampAccepted: true}},
		{"start", dineInKitchen, database.OrderStatusNEW, ActionStart,
			Outcome{Status: database.OrderStatusPREPARING}},
		{"complete dine-in stamps closing", dineInKitchen, database.OrderStatusPREPARING, ActionComplete,
			Outcome{Status: database.OrderStatusCOMPLETED, StampClosed: true}},
		{"complete takeaway stamps closing", takeawayKitchen, database.OrderStatusPREPARING, ActionComplete,
			Outcome{Status: database.OrderStatusCOMPLETED, StampClosed: true}},
		{"complete online withholds closing", onlineKitchen, database.OrderStatusPREPARING, ActionComplete,
			Outcome{Status: database.OrderStatusCOMPLETED}},
		{"auto-complete non-kitchen dine-in", dineInBar, database.OrderStatusNEW, ActionAutoComplete,
			Outcome{Status: database.OrderStatusCOMPLETED, StampClosed: true}},
		{"cancel new", dineInKitchen, database.OrderStatusNEW, ActionCancel,
			Outcome{Status: database.OrderStatusCANCELLED, StampCancelled: true}},
		{"cancel preparing", takeawayKitchen, database.OrderStatusPREPARING, ActionCancel,
			Outcome{Status: database.OrderStatusCANCELLED, StampCancelled: true}},
		{"cancel awaiting acceptance", onlineKitchen, database.OrderStatusAWAITINGACCEPTANCE, ActionCancel,
			Outcome{Status: database.OrderStatusCANCELLED, StampCancelled: true}},
		{"settle ready online order", onlineKitchen, database.OrderStatusCOMPLETED, ActionSettle,
			Outcome{Status: database.OrderStatusCOMPLETED, StampClosed: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Next(tt.kind, tt.from, tt.action)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNext_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		kind   Kind
		from   database.OrderStatus
		action Action
	}{
		{"accept outside awaiting", onlineKitchen, database.OrderStatusNEW, ActionAccept},
		{"start from preparing", dineInKitchen, database.OrderStatusPREPARING, ActionStart},
		{"complete from new", dineInKitchen, database.OrderStatusNEW, ActionComplete},
		{"auto-complete kitchen order", dineInKitchen, database.OrderStatusNEW, ActionAutoComplete},
		{"cancel completed", dineInKitchen, database.OrderStatusCOMPLETED, ActionCancel},
		{"cancel cancelled", dineInKitchen, database.OrderStatusCANCELLED, ActionCancel},
		{"start cancelled", dineInKitchen, database.OrderStatusCANCELLED, ActionStart},
		{"complete completed", takeawayKitchen, database.OrderStatusCOMPLETED, ActionComplete},
		{"settle dine-in", dineInKitchen, database.OrderStatusCOMPLETED, ActionSettle},
		{"settle unfinished online", onlineKitchen, database.OrderStatusPREPARING, ActionSettle},
		{"unknown action", dineInKitchen, database.OrderStatusNEW, Action("teleport")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Next(tt.kind, tt.from, tt.action)
			if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("got %v, want ErrInvalidTransition", err)
			}
		})
	}
}

func TestTerminalStatesHaveNoExit(t *testing.T) {
	actions := []Action{ActionAccept, ActionStart, ActionComplete, ActionAutoComplete, ActionCancel}
	kinds := []Kind{dineInKitchen, dineInBar, takeawayKitchen, takeawayBar, onlineKitchen, onlineBar}
	for _, from := range []database.OrderStatus{database.OrderStatusCOMPLETED, database.OrderStatusCANCELLED} {
		for _, k := range kinds {
			for _, a := range actions {
				if out, err := Next(k, from, a); err == nil {
					t.Errorf("%+v %s %s: got %+v, want error", k, from, a, out)
				}
			}
		}
	}
}

func TestKitchenVisible(t *testing.T) {
	tests := []struct {
		status  database.OrderStatus
		kitchen bool
		want    bool
	}{
		{database.OrderStatusNEW, true, true},
		{database.OrderStatusPREPARING, true, true},
		{database.OrderStatusCOMPLETED, true, true},
		{database.OrderStatusAWAITINGACCEPTANCE, true, false},
		{database.OrderStatusCANCELLED, true, false},
		{database.OrderStatusNEW, false, false},
		{database.OrderStatusCOMPLETED, false, false},
	}
	for _, tt := range tests {
		if got := KitchenVisible(tt.status, tt.kitchen); got != tt.want {
			t.Errorf("KitchenVisible(%s, %v) = %v, want %v", tt.status, tt.kitchen, got, tt.want)
		}
	}
}

func TestNonKitchenOrdersNeverReachKitchenBoard(t *testing.T) {
	for _, k := range []Kind{takeawayBar, onlineBar} {
		out := Initial(k)
		if k.Origin == database.OrderOriginONLINE {
			var err error
			out, err = Next(k, out.Status, ActionAccept)
			if err != nil {
				t.Fatalf("accept: %v", err)
			}
		}
		if out.Status != database.OrderStatusCOMPLETED {
			t.Errorf("%s: got %s, want COMPLETED", k.Origin, out.Status)
		}
		if KitchenVisible(out.Status, k.RequiresKitchen) {
			t.Errorf("%s: order without kitchen items is kitchen-visible", k.Origin)
		}
	}
}
