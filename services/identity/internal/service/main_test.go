package service

import (
	"os"
	"testing"

	"golang.org/x/crypto/bcrypt"

	pkg_hash "github.com/Skotchmaster/classroom/pkg/hash"
)

func TestMain(m *testing.M) {
	pkg_hash.Cost = bcrypt.MinCost
	os.Exit(m.Run())
}
