package enums

// OutletDisplayStatus is the badge shown next to an outlet in list views.
type OutletDisplayStatus string

const (
	OutletDisplayOperational OutletDisplayStatus = "operational"
	OutletDisplayClosed      OutletDisplayStatus = "closed"
	OutletDisplayInactive    OutletDisplayStatus = "inactive"
)

// DeriveOutletDisplayStatus combines the account status and the open flag.
// An inactive outlet is inactive no matter whether it reports itself open.
func DeriveOutletDisplayStatus(status ActiveStatus, open OpenState) OutletDisplayStatus {
	if status != ActiveStatusActive {
		return OutletDisplayInactive
	}
	if open == OpenStateOpen {
		return OutletDisplayOperational
	}
	return OutletDisplayClosed
}

func (o OutletDisplayStatus) String() string {
	return string(o)
}
