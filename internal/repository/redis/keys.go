package redisrepo

import (
	"fmt"

	"github.com/google/uuid"
)

const ns = "tableorder:v1"

func KeyMenu(venueID uuid.UUID) string {
	return fmt.Sprintf("%s:venue:%s:menu", ns, venueID)
}

func KeyIdemSettle(venueID, orderID uuid.UUID, idemKey string) string {
	return fmt.Sprintf("%s:idem:settle:%s:%s:%s", ns, venueID, orderID, idemKey)
}

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}

func ChannelOrders() string {
	return ns + ":orders:changed"
}
