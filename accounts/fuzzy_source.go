package accounts

import (
	"fmt"
	"strings"
)

type FuzzySource []AccDesc

func (self FuzzySource) Len() int {
	return len(self)
}

func (self FuzzySource) String(i int) string {
	return fmt.Sprintf("%s_%s", self[i].Address, strings.ReplaceAll(self[i].Desc, " ", "_"))
}

func (r *Registry) fuzzySource() (FuzzySource, error) {
	accs, err := r.Accounts()
	if err != nil {
		return nil, err
	}
	return FuzzySource(accs), nil
}
