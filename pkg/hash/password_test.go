package hash

import (
	"strings"
	"testing"
)

func TestHash(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "valid password",
			password: "SecurePass123!",
		},
		{
			name:     "minimum length password",
			password: "Pass123!",
		},
		{
			name:     "password too short",
			password: "short",
			wantErr:  true,
		},
		{
			name:     "empty password",
			password: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := Hash(tt.password)

			if tt.wantErr {
				if err == nil {
					t.Error("Hash() expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("Hash() unexpected error = %v", err)
				return
			}

			if hash == "" || hash == tt.password {
				t.Errorf("Hash() returned unusable hash %q", hash)
			}

			if !strings.HasPrefix(hash, "$2a$12$") {
				t.Errorf("Hash() invalid bcrypt format, got = %s", hash[:10])
			}

			if err := Compare(hash, tt.password); err != nil {
				t.Errorf("Compare() rejects own hash: %v", err)
			}
		})
	}
}

func TestHashIsSalted(t *testing.T) {
	password := "SamePassword123!"

	hash1, err := Hash(password)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	hash2, err := Hash(password)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if hash1 == hash2 {
		t.Error("Hash() should generate different hashes for the same password")
	}
}

func TestCompare(t *testing.T) {
	password := "MySecurePassword123!"
	hash, err := Hash(password)
	if err != nil {
		t.Fatalf("Failed to generate hash: %v", err)
	}

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "correct password",
			password: password,
		},
		{
			name:     "incorrect password",
			password: "WrongPassword",
			wantErr:  true,
		},
		{
			name:     "empty password",
			password: "",
			wantErr:  true,
		},
		{
			name:     "case sensitive",
			password: strings.ToUpper(password),
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Compare(hash, tt.password)

			if tt.wantErr && err == nil {
				t.Error("Compare() expected error but got none")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Compare() unexpected error = %v", err)
			}
		})
	}
}

func BenchmarkHash(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := Hash("BenchmarkPassword123!"); err != nil {
			b.Fatalf("Hash() error = %v", err)
		}
	}
}

func BenchmarkCompare(b *testing.B) {
	hash, _ := Hash("BenchmarkPassword123!")

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = Compare(hash, "BenchmarkPassword123!")
	}
}
