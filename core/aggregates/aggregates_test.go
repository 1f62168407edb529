/*
SPDX-License-Identifier: Apache-2.0

Copyright 2026 The Canvas Chat Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package aggregates

import (
	"errors"
	"math"
	"testing"
)

func TestEmptyState(t *testing.T) {
	s := NewNumericAggState()
	if s.Count != 0 || !s.AllInt() {
		t.Errorf("unexpected empty state: count=%d allInt=%v", s.Count, s.AllInt())
	}
	if s.MinIndex() != -1 || s.MaxIndex() != -1 {
		t.Errorf("expected -1 indices, got %d and %d", s.MinIndex(), s.MaxIndex())
	}
	if sum, err := s.IntSum(); err != nil || sum != 0 {
		t.Errorf("IntSum() = %d, %v", sum, err)
	}
}

func TestIntegerAggregation(t *testing.T) {
	s := NewNumericAggState()
	for _, v := range []int64{4, -2, 9, -2, 9} {
		s.AddInt(v)
	}
	if s.Count != 5 {
		t.Errorf("Count = %d, want 5", s.Count)
	}
	if !s.AllInt() {
		t.Error("AllInt() = false, want true")
	}
	if sum, err := s.IntSum(); err != nil || sum != 18 {
		t.Errorf("IntSum() = %d, %v; want 18", sum, err)
	}
	// First occurrence wins on ties.
	if s.MinIndex() != 1 {
		t.Errorf("MinIndex() = %d, want 1", s.MinIndex())
	}
	if s.MaxIndex() != 2 {
		t.Errorf("MaxIndex() = %d, want 2", s.MaxIndex())
	}
}

func TestMixedAggregation(t *testing.T) {
	s := NewNumericAggState()
	s.AddInt(1)
	s.AddFloat(2.5)
	s.AddInt(-3)
	if s.AllInt() {
		t.Error("AllInt() = true after AddFloat")
	}
	if got := s.FloatSum(); got != 0.5 {
		t.Errorf("FloatSum() = %v, want 0.5", got)
	}
	if s.MinIndex() != 2 || s.MaxIndex() != 1 {
		t.Errorf("indices = %d, %d; want 2, 1", s.MinIndex(), s.MaxIndex())
	}
}

func TestIntegerOverflow(t *testing.T) {
	s := NewNumericAggState()
	s.AddInt(math.MaxInt64)
	s.AddInt(1)
	if _, err := s.IntSum(); !errors.Is(err, ErrIntegerOverflow) {
		t.Errorf("IntSum() error = %v, want ErrIntegerOverflow", err)
	}

	// Overflow is sticky even if later values bring the sum back in range.
	s.AddInt(-1)
	if _, err := s.IntSum(); !errors.Is(err, ErrIntegerOverflow) {
		t.Errorf("IntSum() error = %v, want ErrIntegerOverflow", err)
	}
}

func TestCompensatedSum(t *testing.T) {
	s := NewNumericAggState()
	for _, v := range []float64{1e100, 1.0, -1e100} {
		s.AddFloat(v)
	}
	if got := s.FloatSum(); got != 1.0 {
		t.Errorf("FloatSum() = %v, want 1", got)
	}
}

func TestLargeIntegerComparison(t *testing.T) {
	// Both values convert to the same float64, so the comparison must be exact.
	s := NewNumericAggState()
	s.AddInt(1<<53 + 1)
	s.AddInt(1 << 53)
	if s.MinIndex() != 1 || s.MaxIndex() != 0 {
		t.Errorf("indices = %d, %d; want 1, 0", s.MinIndex(), s.MaxIndex())
	}
}
