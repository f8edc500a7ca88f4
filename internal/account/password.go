package account

import "golang.org/x/crypto/bcrypt"

type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// BcryptHasher salts and hashes passwords with bcrypt. A zero Cost uses
// bcrypt.DefaultCost.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(plain string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (h BcryptHasher) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
