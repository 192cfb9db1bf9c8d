package accounts

import "errors"

var ErrNoAccount = errors.New("account does not exist")

type MemAccounts struct {
	Map map[[32]byte]*Account
}

func NewMemAccounts() MemAccounts {
	return MemAccounts{
		Map: make(map[[32]byte]*Account),
	}
}

func (m MemAccounts) GetAccount(pubkey *[32]byte) (*Account, error) {
	acct, ok := m.Map[*pubkey]
	if !ok {
		return nil, ErrNoAccount
	}
	return acct, nil
}

func (m MemAccounts) SetAccount(pubkey *[32]byte, acc *Account) error {
	m.Map[*pubkey] = acc
	return nil
}
