package simulation

// walls are the three axis-aligned half-planes bounding the fluid.
type walls struct {
	floor, left, right float64
	restitution        float64
}

func wallsFromConfig(cfg Config) walls {
	return walls{
		floor:       cfg.Floor,
		left:        cfg.LeftWall,
		right:       cfg.RightWall,
		restitution: cfg.Restitution,
	}
}

// resolve clamps p back inside the container and reflects the velocity
// component normal to every wall it crossed. Each axis is tested on its own,
// so corners resolve in one call.
func (w walls) resolve(p *Particle) {
	if p.Position.Y <= w.floor {
		p.Position.Y = w.floor
		p.Velocity.Y = -p.Velocity.Y * w.restitution
	}
	if p.Position.X < w.left {
		p.Position.X = w.left
		p.Velocity.X = -p.Velocity.X * w.restitution
	}
	if p.Position.X > w.right {
		p.Position.X = w.right
		p.Velocity.X = -p.Velocity.X * w.restitution
	}
}
