package types

// RoomCard:
//   id: number
//   title: string
//   slots: Slot[10]     // number 1..10, available, name ("" | "Vos" | "Jugador N")
//   full: boolean
//   mine: boolean       // viewer is a member of this room
//   accent: "mine" | "full" | "open"
//   button_visible: boolean
//   button_disabled: boolean
//   button_label: string       // "DESCONECTARSE" | "SALA LLENA" | action text
//   connect_line: string       // "ip:port" for members, "Sala Completa" | "" otherwise
