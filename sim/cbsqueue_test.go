package sim

import (
	"errors"
	"testing"
)

const testLinkSpeedBps = 1000e6

func TestNewCBSQueue_DerivedParameters(t *testing.T) {
	// GIVEN a 750 Mbps idle slope on a 1000 Mbps link
	q, err := NewCBSQueue(6, 750, testLinkSpeedBps, 1522, 0)
	if err != nil {
		t.Fatalf("NewCBSQueue: %v", err)
	}

	// THEN slopes and credit bounds follow the CBS formulas
	if q.IdleSlope != 750e6 {
		t.Errorf("IdleSlope: got %v, want 750e6", q.IdleSlope)
	}
	if q.SendSlope != 750e6-testLinkSpeedBps {
		t.Errorf("SendSlope: got %v, want %v", q.SendSlope, 750e6-testLinkSpeedBps)
	}
	wantHi := 1522 * 8 * 750e6 / testLinkSpeedBps
	if q.HiCredit != wantHi {
		t.Errorf("HiCredit: got %v, want %v", q.HiCredit, wantHi)
	}
	if q.LoCredit != -wantHi {
		t.Errorf("LoCredit: got %v, want %v", q.LoCredit, -wantHi)
	}
}

func TestNewCBSQueue_RejectsBadParameters(t *testing.T) {
	tests := []struct {
		name          string
		priority      int
		idleSlopeMbps float64
		maxFrameSize  int
	}{
		{"zero idle slope", 5, 0, 1522},
		{"negative idle slope", 5, -10, 1522},
		{"idle slope above link speed", 5, 1500, 1522},
		{"priority below range", -1, 100, 1522},
		{"priority above range", 8, 100, 1522},
		{"zero max frame size", 5, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCBSQueue(tt.priority, tt.idleSlopeMbps, testLinkSpeedBps, tt.maxFrameSize, 0)
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("got %v, want ErrInvalidConfiguration", err)
			}
		})
	}
}

func TestCBSQueue_CreditStaysWithinBounds(t *testing.T) {
	// GIVEN a queue holding frames
	q, err := NewCBSQueue(5, 100, testLinkSpeedBps, 1522, 0)
	if err != nil {
		t.Fatalf("NewCBSQueue: %v", err)
	}
	if err := q.Enqueue(NewFrame(0, "A", "B", 1500, 5, 0)); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	// WHEN credit accrues far beyond the clamp window
	q.UpdateCredit(10.0, false)
	// THEN it is clamped at HiCredit
	if q.Credit() != q.HiCredit {
		t.Errorf("accrued credit: got %v, want HiCredit %v", q.Credit(), q.HiCredit)
	}

	// WHEN credit depletes far beyond the clamp window
	q.UpdateCredit(20.0, true)
	// THEN it is clamped at LoCredit
	if q.Credit() != q.LoCredit {
		t.Errorf("depleted credit: got %v, want LoCredit %v", q.Credit(), q.LoCredit)
	}

	// AND every intermediate update stays within [lo, hi]
	for i := 0; i < 100; i++ {
		q.UpdateCredit(20.0+float64(i)*0.003, i%3 == 0)
		if q.Credit() < q.LoCredit || q.Credit() > q.HiCredit {
			t.Fatalf("credit %v escaped [%v, %v]", q.Credit(), q.LoCredit, q.HiCredit)
		}
	}
}

func TestCBSQueue_EmptyQueueResetsCreditToZero(t *testing.T) {
	// GIVEN a queue that accrued credit while backlogged
	q, err := NewCBSQueue(5, 100, testLinkSpeedBps, 1522, 0)
	if err != nil {
		t.Fatalf("NewCBSQueue: %v", err)
	}
	if err := q.Enqueue(NewFrame(0, "A", "B", 1500, 5, 0)); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	q.UpdateCredit(0.001, false)
	if q.Credit() <= 0 {
		t.Fatalf("precondition: credit should be positive, got %v", q.Credit())
	}

	// WHEN the queue empties and credit is updated again
	q.Dequeue()
	q.UpdateCredit(0.002, false)

	// THEN credit resets to exactly zero
	if q.Credit() != 0 {
		t.Errorf("credit after emptying: got %v, want 0", q.Credit())
	}
}

func TestCBSQueue_Eligibility(t *testing.T) {
	q, err := NewCBSQueue(5, 100, testLinkSpeedBps, 1522, 0)
	if err != nil {
		t.Fatalf("NewCBSQueue: %v", err)
	}

	// Empty queue is never eligible, even at credit zero.
	if q.Eligible() {
		t.Error("empty queue reported eligible")
	}

	// Non-empty with credit zero is eligible.
	if err := q.Enqueue(NewFrame(0, "A", "B", 1500, 5, 0)); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if !q.Eligible() {
		t.Error("non-empty queue at credit 0 reported ineligible")
	}

	// Negative credit blocks transmission.
	q.UpdateCredit(0.001, true)
	if q.Credit() >= 0 {
		t.Fatalf("precondition: credit should be negative, got %v", q.Credit())
	}
	if q.Eligible() {
		t.Error("queue with negative credit reported eligible")
	}
}

func TestCBSQueue_EnqueueAtCapacity(t *testing.T) {
	// GIVEN a queue with capacity 3
	q, err := NewCBSQueue(5, 100, testLinkSpeedBps, 1522, 3)
	if err != nil {
		t.Fatalf("NewCBSQueue: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := q.Enqueue(NewFrame(int64(i), "A", "B", 1500, 5, 0)); err != nil {
			t.Fatalf("Enqueue[%d]: %v", i, err)
		}
	}

	// WHEN a fourth frame arrives
	err = q.Enqueue(NewFrame(3, "A", "B", 1500, 5, 0))

	// THEN ErrQueueFull is returned and the queue is unchanged
	if !errors.Is(err, ErrQueueFull) {
		t.Errorf("got %v, want ErrQueueFull", err)
	}
	if q.Len() != 3 {
		t.Errorf("Len after rejected enqueue: got %d, want 3", q.Len())
	}
}

func TestCBSQueue_DequeueFIFO(t *testing.T) {
	q, err := NewCBSQueue(5, 100, testLinkSpeedBps, 1522, 0)
	if err != nil {
		t.Fatalf("NewCBSQueue: %v", err)
	}
	for i := int64(0); i < 3; i++ {
		if err := q.Enqueue(NewFrame(i, "A", "B", 1500, 5, 0)); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}
	for i := int64(0); i < 3; i++ {
		f := q.Dequeue()
		if f == nil || f.ID != i {
			t.Errorf("Dequeue[%d]: got %v, want frame %d", i, f, i)
		}
	}
	if f := q.Dequeue(); f != nil {
		t.Errorf("Dequeue on empty queue: got %v, want nil", f)
	}
}

func TestCBSQueue_SetCreditBounds(t *testing.T) {
	q, err := NewCBSQueue(5, 500, testLinkSpeedBps, 1522, 0)
	if err != nil {
		t.Fatalf("NewCBSQueue: %v", err)
	}

	if err := q.SetCreditBounds(2000, -1000); err != nil {
		t.Fatalf("SetCreditBounds: %v", err)
	}
	if q.HiCredit != 2000 || q.LoCredit != -1000 {
		t.Errorf("bounds: got (%v, %v), want (2000, -1000)", q.HiCredit, q.LoCredit)
	}

	if err := q.SetCreditBounds(-5, -1000); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("negative hi credit: got %v, want ErrInvalidConfiguration", err)
	}
	if err := q.SetCreditBounds(2000, 5); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("positive lo credit: got %v, want ErrInvalidConfiguration", err)
	}
}
