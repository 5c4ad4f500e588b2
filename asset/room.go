package asset

// DefaultRoomDocument is the built-in room: one top-level group per vignette
// Positions are metres, rotations are quaternions as [x, y, z, w]
const DefaultRoomDocument = `{
  "name": "room",
  "children": [
    {
      "name": "welcome",
      "children": [
        {"name": "Floor", "kind": "mesh", "position": [0, 0, 0], "scale": [4, 0.01, 4]},
        {"name": "WelcomeText", "kind": "text", "position": [0, 1.6, -1.5]},
        {"name": "WelcomeLight", "kind": "light", "position": [0, 2.5, 0], "intensity": 1.0, "color": [1, 0.95, 0.9]}
      ]
    },
    {
      "name": "birthday",
      "children": [
        {"name": "Floor", "kind": "mesh", "position": [0, 0, 0], "scale": [4, 0.01, 4]},
        {"name": "Table", "kind": "mesh", "position": [0, 0.7, -1.2]},
        {"name": "Cake", "kind": "mesh", "position": [0, 0.82, -1.2]},
        {"name": "Candle1", "kind": "mesh", "position": [-0.12, 0.92, -1.2],
          "children": [{"name": "CandleFire1", "kind": "mesh", "position": [0, 0.06, 0], "color": [1, 0.6, 0.1]}]},
        {"name": "Candle2", "kind": "mesh", "position": [0, 0.92, -1.08],
          "children": [{"name": "CandleFire2", "kind": "mesh", "position": [0, 0.06, 0], "color": [1, 0.6, 0.1]}]},
        {"name": "Candle3", "kind": "mesh", "position": [0.12, 0.92, -1.2],
          "children": [{"name": "CandleFire3", "kind": "mesh", "position": [0, 0.06, 0], "color": [1, 0.6, 0.1]}]},
        {"name": "CandleLight", "kind": "light", "position": [0, 1.1, -1.2], "intensity": 1.5, "color": [1, 0.7, 0.3]},
        {"name": "Paddle", "kind": "mesh", "position": [0.6, 0.8, -0.9]}
      ]
    },
    {
      "name": "sister",
      "children": [
        {"name": "Floor", "kind": "mesh", "position": [0, 0, 0], "scale": [4, 0.01, 4]},
        {"name": "Pedestal", "kind": "mesh", "position": [-0.5, 0.45, -1]},
        {"name": "Ball", "kind": "mesh", "position": [-0.5, 1.0, -1]},
        {"name": "Cube", "kind": "mesh", "position": [0.5, 1.2, -1], "rotation": [0, 0.3826834, 0, 0.9238795]},
        {"name": "SisterLight", "kind": "light", "position": [0, 2.4, -1], "intensity": 0.8, "color": [0.7, 0.8, 1]}
      ]
    }
  ]
}`
