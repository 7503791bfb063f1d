package contract

// MovieNFTABI is the ABI of the MovieNFT contract as emitted by Hardhat for
// contracts/MovieNFT.sol. Only the entries this service uses are listed.
const MovieNFTABI = `[
	{
		"inputs": [
			{"internalType": "string",  "name": "name",   "type": "string"},
			{"internalType": "uint256", "name": "year",   "type": "uint256"},
			{"internalType": "string",  "name": "genre",  "type": "string"},
			{"internalType": "string",  "name": "poster", "type": "string"},
			{"internalType": "uint256", "name": "shares", "type": "uint256"},
			{"internalType": "uint256", "name": "price",  "type": "uint256"}
		],
		"name": "mint",
		"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "address", "name": "recipient", "type": "address"},
			{"internalType": "string",  "name": "tokenURI",  "type": "string"}
		],
		"name": "mintNFT",
		"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "uint256", "name": "tokenId", "type": "uint256"},
			{"internalType": "uint256", "name": "amount",  "type": "uint256"}
		],
		"name": "buyShares",
		"outputs": [],
		"stateMutability": "payable",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "uint256", "name": "tokenId", "type": "uint256"}],
		"name": "burn",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "uint256", "name": "tokenId", "type": "uint256"}],
		"name": "getMovieDetails",
		"outputs": [
			{"internalType": "string",  "name": "name",   "type": "string"},
			{"internalType": "uint256", "name": "year",   "type": "uint256"},
			{"internalType": "string",  "name": "genre",  "type": "string"},
			{"internalType": "string",  "name": "poster", "type": "string"},
			{"internalType": "uint256", "name": "shares", "type": "uint256"},
			{"internalType": "uint256", "name": "price",  "type": "uint256"}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "uint256", "name": "tokenId", "type": "uint256"}],
		"name": "ownerOf",
		"outputs": [{"internalType": "address", "name": "", "type": "address"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "uint256", "name": "tokenId", "type": "uint256"}],
		"name": "tokenURI",
		"outputs": [{"internalType": "string", "name": "", "type": "string"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "totalSupply",
		"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "uint256", "name": "index", "type": "uint256"}],
		"name": "tokenByIndex",
		"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "internalType": "address", "name": "from",    "type": "address"},
			{"indexed": true, "internalType": "address", "name": "to",      "type": "address"},
			{"indexed": true, "internalType": "uint256", "name": "tokenId", "type": "uint256"}
		],
		"name": "Transfer",
		"type": "event"
	}
]`
