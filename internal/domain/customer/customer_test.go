package customer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewCustomerDefaults(t *testing.T) {
	before := time.Now().UTC()
	cust := NewCustomer("ACME01", "Acme Industries")
	after := time.Now().UTC()

	assert.Equal(t, "ACME01", cust.CustomerCode)
	assert.Equal(t, "Acme Industries", cust.CompanyName)
	assert.Equal(t, StatusActive, cust.Status)
	assert.True(t, cust.IsActive())
	assert.False(t, cust.CreatedAt.Before(before))
	assert.False(t, cust.CreatedAt.After(after))
	assert.Equal(t, cust.CreatedAt, cust.UpdatedAt)
}

func TestDisplayName(t *testing.T) {
	cust := NewCustomer("ACME01", "Acme Industries")
	assert.Equal(t, "Acme Industries", cust.DisplayName())

	cust.CompanyName = ""
	assert.Equal(t, "ACME01", cust.DisplayName())
}

func TestActivateDeactivate(t *testing.T) {
	cust := NewCustomer("ACME01", "Acme Industries")
	created := cust.UpdatedAt

	time.Sleep(time.Millisecond)
	cust.Deactivate()

	assert.Equal(t, StatusInactive, cust.Status)
	assert.False(t, cust.IsActive())
	assert.True(t, cust.UpdatedAt.After(created))

	deactivated := cust.UpdatedAt
	time.Sleep(time.Millisecond)
	cust.Activate()

	assert.Equal(t, StatusActive, cust.Status)
	assert.True(t, cust.UpdatedAt.After(deactivated))
}

func TestCloneIsIndependent(t *testing.T) {
	cust := NewCustomer("ACME01", "Acme Industries")
	cust.CustomerID = 5

	dup := cust.Clone()
	dup.CompanyName = "Renamed Co"
	dup.CustomerID = 6

	assert.Equal(t, "Acme Industries", cust.CompanyName)
	assert.Equal(t, int64(5), cust.CustomerID)
}

func TestCloneNil(t *testing.T) {
	var cust *Customer
	assert.Nil(t, cust.Clone())
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "42", IDKey(42))
	assert.Equal(t, "code:ACME01", CodeKey("ACME01"))
}
