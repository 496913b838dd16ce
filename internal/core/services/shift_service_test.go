package services

import (
	"context"
	"errors"
	"testing"

	"queuehub-backend/internal/adapters/persistence/models"
)

// shiftFixture wires a ShiftService over fakes around one employee (ID 9,
// desk 7, branch 1) whose working/break flags each test sets up.
type shiftFixture struct {
	user   *models.User
	flags  map[string]interface{}
	events []string
	svc    *ShiftService
}

func newShiftFixture(working, onBreak bool) *shiftFixture {
	deskID, branchID := uint(7), uint(1)
	f := &shiftFixture{
		user: &models.User{
			ID: 9, Username: "somchai", Role: models.RoleEmployee,
			BranchID: &branchID, AssignedDeskID: &deskID,
			IsWorking: working, IsOnBreak: onBreak, IsAvailable: working && !onBreak,
		},
	}

	users := &fakeUserRepo{
		getByIDFn: func(ctx context.Context, id uint) (*models.User, error) {
			u := *f.user
			return &u, nil
		},
	}
	directory := &fakeDirectoryRepo{
		updateFlagsFn: func(ctx context.Context, userID uint, flags map[string]interface{}) error {
			f.flags = flags
			return nil
		},
	}
	shifts := &fakeShiftRepo{
		createFn: func(ctx context.Context, entry *models.ShiftLog) error {
			f.events = append(f.events, entry.Event)
			return nil
		},
	}
	tokens := &fakeTokenRepo{
		servingFn: func(ctx context.Context, employeeID uint) (*models.Token, error) {
			return nil, nil
		},
	}

	f.svc = NewShiftService(users, directory, shifts, tokens, nil)
	return f
}

func (f *shiftFixture) flag(name string) bool {
	v, ok := f.flags[name].(bool)
	return ok && v
}

func TestCheckIn(t *testing.T) {
	t.Run("flips working and available", func(t *testing.T) {
		f := newShiftFixture(false, false)

		if _, err := f.svc.CheckIn(context.Background(), 9); err != nil {
			t.Fatalf("CheckIn() error = %v", err)
		}
		if !f.flag("is_working") || !f.flag("is_available") || f.flag("is_on_break") {
			t.Errorf("flags = %v, want working+available, not on break", f.flags)
		}
		if len(f.events) != 1 || f.events[0] != models.ShiftEventCheckIn {
			t.Errorf("events = %v, want one CHECK_IN", f.events)
		}
	})

	t.Run("twice is an error", func(t *testing.T) {
		f := newShiftFixture(true, false)

		if _, err := f.svc.CheckIn(context.Background(), 9); !errors.Is(err, ErrAlreadyCheckedIn) {
			t.Fatalf("error = %v, want ErrAlreadyCheckedIn", err)
		}
	})
}

func TestCheckOut(t *testing.T) {
	t.Run("clears all flags", func(t *testing.T) {
		f := newShiftFixture(true, false)

		if _, err := f.svc.CheckOut(context.Background(), 9); err != nil {
			t.Fatalf("CheckOut() error = %v", err)
		}
		if f.flag("is_working") || f.flag("is_available") || f.flag("is_on_break") {
			t.Errorf("flags = %v, want all cleared", f.flags)
		}
		if len(f.events) != 1 || f.events[0] != models.ShiftEventCheckOut {
			t.Errorf("events = %v, want one CHECK_OUT", f.events)
		}
	})

	t.Run("refused while serving", func(t *testing.T) {
		f := newShiftFixture(true, false)
		f.svc.tokenRepo = &fakeTokenRepo{
			servingFn: func(ctx context.Context, employeeID uint) (*models.Token, error) {
				return &models.Token{ID: 11, Status: models.TokenStatusServing}, nil
			},
		}

		if _, err := f.svc.CheckOut(context.Background(), 9); !errors.Is(err, ErrStillServing) {
			t.Fatalf("error = %v, want ErrStillServing", err)
		}
	})

	t.Run("not checked in", func(t *testing.T) {
		f := newShiftFixture(false, false)

		if _, err := f.svc.CheckOut(context.Background(), 9); !errors.Is(err, ErrNotCheckedIn) {
			t.Fatalf("error = %v, want ErrNotCheckedIn", err)
		}
	})
}

func TestBreaks(t *testing.T) {
	t.Run("start pulls employee from dispatch", func(t *testing.T) {
		f := newShiftFixture(true, false)

		if _, err := f.svc.StartBreak(context.Background(), 9); err != nil {
			t.Fatalf("StartBreak() error = %v", err)
		}
		if f.flag("is_available") || !f.flag("is_on_break") {
			t.Errorf("flags = %v, want on break and unavailable", f.flags)
		}
	})

	t.Run("start requires check-in", func(t *testing.T) {
		f := newShiftFixture(false, false)

		if _, err := f.svc.StartBreak(context.Background(), 9); !errors.Is(err, ErrNotCheckedIn) {
			t.Fatalf("error = %v, want ErrNotCheckedIn", err)
		}
	})

	t.Run("start twice is an error", func(t *testing.T) {
		f := newShiftFixture(true, true)

		if _, err := f.svc.StartBreak(context.Background(), 9); !errors.Is(err, ErrAlreadyOnBreak) {
			t.Fatalf("error = %v, want ErrAlreadyOnBreak", err)
		}
	})

	t.Run("end restores availability", func(t *testing.T) {
		f := newShiftFixture(true, true)

		if _, err := f.svc.EndBreak(context.Background(), 9); err != nil {
			t.Fatalf("EndBreak() error = %v", err)
		}
		if !f.flag("is_available") || f.flag("is_on_break") {
			t.Errorf("flags = %v, want available and off break", f.flags)
		}
		if len(f.events) != 1 || f.events[0] != models.ShiftEventBreakEnd {
			t.Errorf("events = %v, want one BREAK_END", f.events)
		}
	})

	t.Run("end without break is an error", func(t *testing.T) {
		f := newShiftFixture(true, false)

		if _, err := f.svc.EndBreak(context.Background(), 9); !errors.Is(err, ErrNotOnBreak) {
			t.Fatalf("error = %v, want ErrNotOnBreak", err)
		}
	})
}
