package engine

import (
	"github.com/jayesh-zip/blog-app/internal/engine/actors"
	"github.com/jayesh-zip/blog-app/internal/storage"
	"github.com/jayesh-zip/blog-app/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
)

// Engine coordinates communication between the lifecycle actors
type Engine struct {
	postActor *actor.PID
	userActor *actor.PID
}

func NewEngine(
	system *actor.ActorSystem,
	metrics *utils.MetricsCollector,
	users actors.UserStore,
	posts actors.PostStore,
	blobs storage.BlobStore,
) *Engine {
	context := system.Root

	postProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewPostActor(posts, users, blobs, metrics)
	})
	postPID := context.Spawn(postProps)

	userProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewUserActor(users, blobs, metrics)
	})
	userPID := context.Spawn(userProps)

	return &Engine{
		postActor: postPID,
		userActor: userPID,
	}
}

// GetPostActor returns the PID of the post lifecycle actor
func (e *Engine) GetPostActor() *actor.PID {
	return e.postActor
}

// GetUserActor returns the PID of the user profile actor
func (e *Engine) GetUserActor() *actor.PID {
	return e.userActor
}
