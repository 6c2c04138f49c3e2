package merchant

// Phone is a contact number owned by a merchant record.
type Phone struct {
	Type   string
	Number string
}

// Address is a postal address owned by a merchant record.
type Address struct {
	Type   string
	Street string
	City   string
	State  string
	Zip    string
}

// Merchant is an informational record keyed by MCC for category lookups.
// Phone and Address are owned values, never shared between merchants. The
// engine only cares about MCC and Name.
type Merchant struct {
	ID      string
	MCC     string
	Name    string
	Phone   *Phone
	Address *Address
}
