package domain

import (
	"fmt"
	"regexp"
)

type NotificationKind string

const (
	NOTIFICATION_ALERT NotificationKind = "alert"
	NOTIFICATION_ALARM NotificationKind = "alarm"
)

type NotificationStatus string

const (
	STATUS_UNRESOLVED NotificationStatus = "unresolved"
	STATUS_COMPLETED  NotificationStatus = "completed"
)

type Role string

const (
	ROLE_ADMIN Role = "admin"
	ROLE_USER  Role = "user"
)

// ParseRole defaults an empty value to the unprivileged role.
func ParseRole(value string) (Role, error) {
	switch Role(value) {
	case "":
		return ROLE_USER, nil
	case ROLE_ADMIN, ROLE_USER:
		return Role(value), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, value)
}

// Privileged roles see every alarm; everybody else only the first one.
func (r Role) Privileged() bool {
	return r == ROLE_ADMIN
}

type Notification struct {
	Id        int                `json:"id"`
	Kind      NotificationKind   `json:"type"`
	Message   string             `json:"message"`
	Timestamp string             `json:"timestamp"`
	Status    NotificationStatus `json:"status,omitempty"`
}

var unitNameRegexp = regexp.MustCompile(`ThermaCore Unit (\d+)`)

// UnitName extracts the "ThermaCore Unit NNN" reference from the message.
func (n Notification) UnitName() (string, bool) {
	m := unitNameRegexp.FindStringSubmatch(n.Message)
	if len(m) != 2 {
		return "", false
	}
	return m[0], true
}
