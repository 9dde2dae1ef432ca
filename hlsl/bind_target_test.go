// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gogpu/spvcross/ir"
)

func TestRegisterType(t *testing.T) {
	tests := []struct {
		rt   RegisterType
		want string
		flag AutoBinding
	}{
		{RegisterTypeB, "b", AutoBindCBV},
		{RegisterTypeT, "t", AutoBindSRV},
		{RegisterTypeS, "s", AutoBindSampler},
		{RegisterTypeU, "u", AutoBindUAV},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.rt.String())
		assert.Equal(t, tt.flag, tt.rt.Flag())
		assert.NotZero(t, AutoBindAll&tt.flag)
	}
}

func TestValidateRootConstants(t *testing.T) {
	tests := []struct {
		name   string
		ranges []RootConstant
		ok     bool
	}{
		{"none", nil, true},
		{"disjoint", []RootConstant{{Start: 0, End: 16}, {Start: 16, End: 32, Binding: 1}}, true},
		{"unaligned start", []RootConstant{{Start: 2, End: 16}}, false},
		{"unaligned end", []RootConstant{{Start: 0, End: 6}}, false},
		{"empty", []RootConstant{{Start: 8, End: 8}}, false},
		{"overlap", []RootConstant{{Start: 0, End: 16}, {Start: 12, End: 20, Binding: 1}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRootConstants(tt.ranges)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, ir.IsKind(err, ir.ErrConflictingBinding), "got %v", err)
		})
	}
}

func TestRootConstantString(t *testing.T) {
	rc := RootConstant{Start: 16, End: 32, Binding: 2, Space: 1}
	assert.Equal(t, "[16, 32) -> register(b2, space1)", rc.String())
}

func TestRootConstantOwnerOutsideModuleIDs(t *testing.T) {
	assert.NotEqual(t, rootConstantOwner(0), rootConstantOwner(1))
	assert.Greater(t, uint32(rootConstantOwner(7)), uint32(1)<<30)
}
