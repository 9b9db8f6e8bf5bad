package reader

// Linux input event codes (linux/input-event-codes.h) mapped to the key
// codes browsers report for the same physical key. Letters are reported
// as their uppercase code whatever the shift state, as browsers do.
var browserCodes = map[uint16]int{
	1:   27, // ESC
	2:   49, // 1
	3:   50,
	4:   51,
	5:   52,
	6:   53,
	7:   54,
	8:   55,
	9:   56,
	10:  57,
	11:  48,  // 0
	12:  189, // MINUS
	13:  187, // EQUAL
	14:  8,   // BACKSPACE
	15:  9,   // TAB
	16:  81,  // Q
	17:  87,
	18:  69,
	19:  82,
	20:  84,
	21:  89,
	22:  85,
	23:  73,
	24:  79,
	25:  80,  // P
	26:  219, // LEFTBRACE
	27:  221, // RIGHTBRACE
	28:  13,  // ENTER
	29:  17,  // LEFTCTRL
	30:  65,  // A
	31:  83,
	32:  68,
	33:  70,
	34:  71,
	35:  72,
	36:  74,
	37:  75,
	38:  76,  // L
	39:  186, // SEMICOLON
	40:  222, // APOSTROPHE
	41:  192, // GRAVE
	42:  16,  // LEFTSHIFT
	43:  220, // BACKSLASH
	44:  90,  // Z
	45:  88,
	46:  67,
	47:  86,
	48:  66,
	49:  78,
	50:  77,  // M
	51:  188, // COMMA
	52:  190, // DOT
	53:  191, // SLASH
	54:  16,  // RIGHTSHIFT
	55:  106, // KPASTERISK
	56:  18,  // LEFTALT
	57:  32,  // SPACE
	58:  20,  // CAPSLOCK
	69:  144, // NUMLOCK
	70:  145, // SCROLLLOCK
	71:  103, // KP7
	72:  104,
	73:  105,
	74:  109, // KPMINUS
	75:  100, // KP4
	76:  101,
	77:  102,
	78:  107, // KPPLUS
	79:  97,  // KP1
	80:  98,
	81:  99,
	82:  96,  // KP0
	83:  110, // KPDOT
	96:  13,  // KPENTER
	97:  17,  // RIGHTCTRL
	98:  111, // KPSLASH
	100: 18,  // RIGHTALT
	102: 36,  // HOME
	103: 38,  // UP
	104: 33,  // PAGEUP
	105: 37,  // LEFT
	106: 39,  // RIGHT
	107: 35,  // END
	108: 40,  // DOWN
	109: 34,  // PAGEDOWN
	110: 45,  // INSERT
	111: 46,  // DELETE
}

// BrowserCode translates a Linux key code. ok is false for keys with no
// browser equivalent.
func BrowserCode(linux uint16) (code int, ok bool) {
	code, ok = browserCodes[linux]
	return code, ok
}
