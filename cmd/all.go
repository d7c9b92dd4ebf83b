package cmd

import (
	_ "dust-keeper/cmd/game"
	_ "dust-keeper/cmd/root"
	_ "dust-keeper/cmd/server"
	_ "dust-keeper/cmd/vpn"
)
