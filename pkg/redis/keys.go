package redis

import "strings"

// All keys live under "sb:" followed by a kind and its identifying parts.
const keyNamespace = "sb"

func key(kind string, parts ...string) string {
	var b strings.Builder
	b.WriteString(keyNamespace)
	b.WriteByte(':')
	b.WriteString(kind)
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			b.WriteByte(':')
			b.WriteString(part)
		}
	}
	return b.String()
}

func (*Client) IdempotencyKey(scope, id string) string { return key("idempotency", scope, id) }

func (*Client) RateLimitKey(scope string) string { return key("rate_limit", scope) }

func (*Client) AccessSessionKey(accessID string) string { return key("session", "access", accessID) }

// BookingDraftKey namespaces an in-progress booking by tenant and draft id.
func (*Client) BookingDraftKey(tenant, draftID string) string {
	return key("booking_draft", tenant, draftID)
}

// CollectionKey addresses the remote mirror of a tenant collection.
func (*Client) CollectionKey(namespace, collection string) string {
	return key("collections", namespace, collection)
}

func (*Client) LockKey(name string) string { return key("lock", name) }
