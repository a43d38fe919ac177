package types

// Client -> Server (REST)
// POST /api/login:
//   email: string
//   password: string
//
// POST /api/rooms:
//   name: string            // required
//   description: string     // optional
//   server_ip: string       // required
//   server_port: number     // 1..65535
//   (max players is fixed at 10, not client-settable)
//
// POST /api/rooms/{id}/leave: {}
//
// POST /api/logout: {}

// Server -> Client (WebSocket, /ws)
// RoomsSnapshot:
//   version: number
//   rooms: RoomCard[]   // projected for this connection's viewer
//
// Error:
//   error: string
