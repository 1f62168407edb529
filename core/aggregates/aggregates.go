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

// Package aggregates provides the running state behind the sum, min and max
// calculator functions. Values are fed one at a time, tagged as integer or
// floating point, and the state tracks enough to answer all three without
// losing the integer kind when every input was an integer.
package aggregates

import (
	"errors"
	"math"
)

// ErrIntegerOverflow is returned by Sum when an all-integer sum leaves int64.
var ErrIntegerOverflow = errors.New("integer sum overflow")

// number is one observed input.
type number struct {
	isInt bool
	i     int64
	f     float64
}

func (n number) float() float64 {
	if n.isInt {
		return float64(n.i)
	}
	return n.f
}

// less compares two inputs, exactly when both are integers.
func less(a, b number) bool {
	if a.isInt && b.isInt {
		return a.i < b.i
	}
	return a.float() < b.float()
}

// NumericAggState stores intermediate state for numeric aggregates.
type NumericAggState struct {
	Count int64 // Number of values

	allInt   bool
	intSum   int64
	overflow bool

	// Neumaier compensated float sum over every input.
	floatSum float64
	comp     float64

	min, max           number
	minIndex, maxIndex int
}

// NewNumericAggState creates a new empty numeric aggregate state.
func NewNumericAggState() *NumericAggState {
	return &NumericAggState{
		allInt:   true,
		minIndex: -1,
		maxIndex: -1,
	}
}

// AddInt adds an integer value to the aggregate state.
func (s *NumericAggState) AddInt(value int64) {
	if !s.overflow {
		sum := s.intSum + value
		if (value > 0 && sum < s.intSum) || (value < 0 && sum > s.intSum) {
			s.overflow = true
		}
		s.intSum = sum
	}
	s.addFloat(float64(value))
	s.observe(number{isInt: true, i: value})
}

// AddFloat adds a floating-point value to the aggregate state.
func (s *NumericAggState) AddFloat(value float64) {
	s.allInt = false
	s.addFloat(value)
	s.observe(number{f: value})
}

func (s *NumericAggState) addFloat(value float64) {
	t := s.floatSum + value
	if math.Abs(s.floatSum) >= math.Abs(value) {
		s.comp += (s.floatSum - t) + value
	} else {
		s.comp += (value - t) + s.floatSum
	}
	s.floatSum = t
}

func (s *NumericAggState) observe(n number) {
	idx := int(s.Count)
	s.Count++
	if s.minIndex < 0 || less(n, s.min) {
		s.min, s.minIndex = n, idx
	}
	if s.maxIndex < 0 || less(s.max, n) {
		s.max, s.maxIndex = n, idx
	}
}

// AllInt reports whether every value added so far was an integer.
func (s *NumericAggState) AllInt() bool {
	return s.allInt
}

// IntSum returns the exact sum of an all-integer input.
func (s *NumericAggState) IntSum() (int64, error) {
	if s.overflow {
		return 0, ErrIntegerOverflow
	}
	return s.intSum, nil
}

// FloatSum returns the compensated floating-point sum of every input.
func (s *NumericAggState) FloatSum() float64 {
	if math.IsInf(s.floatSum, 0) || math.IsNaN(s.floatSum) {
		return s.floatSum
	}
	return s.floatSum + s.comp
}

// MinIndex returns the position of the first smallest value, or -1 when empty.
func (s *NumericAggState) MinIndex() int {
	return s.minIndex
}

// MaxIndex returns the position of the first largest value, or -1 when empty.
func (s *NumericAggState) MaxIndex() int {
	return s.maxIndex
}
