// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"testing"
)

func TestHashArgon2(t *testing.T) {
	hash, err := HashArgon2("Dd1.1")
	if err != nil {
		t.Fatalf("HashArgon2 error: %v", err)
	}
	if !IsArgon2Hash(hash) {
		t.Fatalf("hash has unexpected format: %s", hash)
	}
	if NeedsRehash(hash) {
		t.Error("fresh hash reported as needing rehash")
	}
}

func TestVerifyArgon2(t *testing.T) {
	hash, err := HashArgon2("Dd1.1")
	if err != nil {
		t.Fatalf("HashArgon2 error: %v", err)
	}

	valid, err := VerifyArgon2("Dd1.1", hash)
	if err != nil {
		t.Fatalf("VerifyArgon2 error: %v", err)
	}
	if !valid {
		t.Fatal("Correct password was rejected")
	}

	valid, err = VerifyArgon2("dd1.1", hash)
	if err != nil {
		t.Fatalf("VerifyArgon2 error: %v", err)
	}
	if valid {
		t.Fatal("Wrong password was accepted")
	}
}

func TestVerifyArgon2_OlderParameters(t *testing.T) {
	// Hash for "changeme" created with m=65536,t=1,p=4.
	oldHash := "$argon2id$v=19$m=65536,t=1,p=4$mucMvOaS6lZ2LWNS1OEFKw$UYEWv8cvCOO6l2zGeqv3JPVe1nyy0x9GXBfYEuDM544"

	valid, err := VerifyArgon2("changeme", oldHash)
	if err != nil {
		t.Fatalf("VerifyArgon2 error: %v", err)
	}
	if !valid {
		t.Fatal("older hash rejected correct password")
	}
	if !NeedsRehash(oldHash) {
		t.Error("older parameters should need a rehash")
	}
}

func TestVerifyArgon2_Malformed(t *testing.T) {
	tests := []string{
		"",
		"plain",
		"$argon2i$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$garbage$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1,t=1,p=1$!!!$aGFzaA",
	}
	for _, h := range tests {
		if _, err := VerifyArgon2("x", h); err == nil {
			t.Errorf("VerifyArgon2(%q) expected error", h)
		}
	}
}
