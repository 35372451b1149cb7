// Package library holds reusable atomic models: a periodic generator, a
// zero-delay passthrough, the light-following robot controller, and the
// device adapters that connect a network to sensors and motors.
//
// Importing the package registers every model kind with sim/network:
//
//	generator, passthrough, passthrough_bool, lightbot,
//	analog_input, digital_input, pwm_output, digital_output
package library
