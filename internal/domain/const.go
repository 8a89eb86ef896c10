package domain

const (
	// ETHEREUM_ZERO_ADDRESS is the mint source and burn destination
	ETHEREUM_ZERO_ADDRESS = "0x0000000000000000000000000000000000000000"

	// MULTICALL3_ADDRESS is the canonical Multicall3 deployment shared by most EVM chains
	MULTICALL3_ADDRESS = "0xcA11bde05977b3631167028862bE2a173976CA11"

	// ERC165 interface identifiers
	ERC721_INTERFACE_ID  = "0x80ac58cd"
	ERC1155_INTERFACE_ID = "0xd9b67a26"
)
