package middleware

import "github.com/gofiber/fiber/v2"

// ActorLocalsKey is the fiber locals key holding the resolved acting user id.
const ActorLocalsKey = "actorID"

// ActorResolver decides which user a request acts as. There is deliberately a
// single implementation today; swapping in real authentication later means
// replacing this one seam, not touching handlers.
type ActorResolver interface {
	Resolve(c *fiber.Ctx) uint
}

// QueryActorResolver resolves the actor from the ?user_id= query parameter,
// falling back to a fixed default identity when the parameter is absent or
// not a positive integer. Trust is assumed; there is no authentication.
type QueryActorResolver struct {
	DefaultID uint
}

// Resolve implements ActorResolver.
func (r QueryActorResolver) Resolve(c *fiber.Ctx) uint {
	id := c.QueryInt("user_id", 0)
	if id <= 0 {
		return r.DefaultID
	}
	return uint(id)
}

// ResolveActor returns middleware that stores the acting user id in fiber
// locals for every request. Handlers read it via Actor(c) and never inspect
// the query parameter themselves.
func ResolveActor(resolver ActorResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(ActorLocalsKey, resolver.Resolve(c))
		return c.Next()
	}
}

// Actor returns the acting user id resolved for this request.
func Actor(c *fiber.Ctx) uint {
	if id, ok := c.Locals(ActorLocalsKey).(uint); ok {
		return id
	}
	return 0
}
