package ports_test

import (
	"testing"

	"github.com/aretw0/unitgrid/pkg/ports"
)

func TestProjectStore_Contract(t *testing.T) {
	ports.RunProjectStoreContract(t, NewMockStore())
}
